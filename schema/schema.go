// Package schema generates the JSON Schemas sent to backends as tool
// parameters and structured-output instructions.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Reflector inlines every definition; backends do not resolve $ref.
var Reflector = &jsonschema.Reflector{
	DoNotReference: true,
}

// metaKeys are stripped from generated schemas. Gemini rejects them in
// function declarations and the other backends ignore them.
var metaKeys = []string{"$schema", "$id"}

// Generate creates a schema for T, a struct with json and jsonschema tags.
//
// Example:
//
//	type Book struct {
//	    Title  string `json:"title" jsonschema:"required,description=The book title"`
//	    Author string `json:"author" jsonschema:"required"`
//	    Year   int    `json:"year,omitempty"`
//	}
//
//	schema, err := schema.Generate[Book]()
func Generate[T any]() (json.RawMessage, error) {
	var zero T
	return Marshal(Reflector.Reflect(&zero))
}

// GenerateFromValue creates a schema from the type of v.
func GenerateFromValue(v any) (json.RawMessage, error) {
	return Marshal(Reflector.Reflect(v))
}

// Marshal encodes s without meta keys. A nil schema or one without a type
// becomes an object schema, the only parameter shape tools accept.
func Marshal(s *jsonschema.Schema) (json.RawMessage, error) {
	if s == nil {
		return json.RawMessage(`{"type":"object","properties":{}}`), nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	return Compact(raw)
}

// Compact strips meta keys from a raw schema and defaults its type to object.
func Compact(raw json.RawMessage) (json.RawMessage, error) {
	var err error
	for _, key := range metaKeys {
		if raw, err = sjson.DeleteBytes(raw, escape(key)); err != nil {
			return nil, fmt.Errorf("compacting schema: %w", err)
		}
	}
	if !gjson.GetBytes(raw, "type").Exists() {
		if raw, err = sjson.SetBytes(raw, "type", "object"); err != nil {
			return nil, fmt.Errorf("compacting schema: %w", err)
		}
	}
	return raw, nil
}

// escape protects the path syntax characters sjson would interpret.
func escape(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '.', '*', '?', '|', '#', '@', '\\':
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}
