// Package summarize turns raw product literature into short HTML summaries.
//
// Extraction is rule based: a handful of regular expressions find the
// primary purpose, the most specific mechanism sentence, a differentiating
// claim and dosing guidance, which are then assembled into
// "summary-section" HTML blocks. An optional [Lexicon] loaded from the data
// directory adds ingredient and benefit-area blocks.
package summarize
