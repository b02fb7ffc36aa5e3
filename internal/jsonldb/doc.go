// Package jsonldb provides a generic, concurrent-safe, JSONL-backed data store.
//
// # Overview
//
// The package centers around [Table], a generic container that stores rows in a
// JSONL (JSON Lines) file with full in-memory caching for fast reads. Tables are
// safe for concurrent use by multiple goroutines.
//
// # File Format
//
// JSONL files with line 1 as schema header, subsequent lines as JSON rows. The
// header is derived from the row type with JSON Schema reflection so that the
// file documents itself. Files written without a header are still accepted.
package jsonldb
