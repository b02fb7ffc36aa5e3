// Handles schema definition, column types, and reflection-based schema generation.

package jsonldb

import (
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/invopop/jsonschema"
)

var errSchemaVersionRequired = errors.New("schema version is required")

// currentVersion is the current version of the JSONL table format.
const currentVersion = "1.0"

type columnType string

const (
	columnTypeText   columnType = "text"
	columnTypeNumber columnType = "number"
	columnTypeBool   columnType = "bool"
	columnTypeDate   columnType = "date"
	columnTypeJSONB  columnType = "jsonb"
)

type column struct {
	Name        string     `json:"name"`
	Type        columnType `json:"type"`
	Required    bool       `json:"required,omitempty"`
	Description string     `json:"description,omitempty"`
}

// schemaHeader is the first row of a JSONL data file.
type schemaHeader struct {
	Version string   `json:"version"`
	Columns []column `json:"columns"`
}

// Validate checks that the schema header is well-formed.
func (h *schemaHeader) Validate() error {
	if h.Version == "" {
		return errSchemaVersionRequired
	}
	for i, col := range h.Columns {
		if col.Name == "" {
			return fmt.Errorf("column %d: name is required", i)
		}
		if col.Type == "" {
			return fmt.Errorf("column %d: type is required", i)
		}
	}
	return nil
}

// Schema returns the JSON Schema of a row type, inlined without $ref.
func Schema[T any]() *jsonschema.Schema {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	return r.ReflectFromType(t)
}

// schemaFromType derives the columns of T from its JSON Schema, in field
// order. Descriptions come from `jsonschema:"description=..."` tags.
func schemaFromType[T any]() ([]column, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("row type must be a struct, got %s", t.Kind())
	}
	schema := Schema[T]()
	var cols []column
	for p := schema.Properties.Oldest(); p != nil; p = p.Next() {
		cols = append(cols, column{
			Name:        p.Key,
			Type:        columnTypeOf(p.Value),
			Required:    slices.Contains(schema.Required, p.Key),
			Description: p.Value.Description,
		})
	}
	return cols, nil
}

// columnTypeOf maps a JSON Schema property to a column type.
func columnTypeOf(s *jsonschema.Schema) columnType {
	switch s.Type {
	case "integer", "number":
		return columnTypeNumber
	case "boolean":
		return columnTypeBool
	case "object", "array":
		return columnTypeJSONB
	case "string":
		if s.Format == "date-time" {
			return columnTypeDate
		}
	}
	return columnTypeText
}
