// Package validation validates transport payloads against JSON schemas.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// QueryRequestSchema is the contract for POST /query bodies.
const QueryRequestSchema = `{
	"type": "object",
	"properties": {
		"query":       {"type": "string", "minLength": 1},
		"toolContext": {"type": "string"},
		"testMode":    {"type": "boolean"}
	},
	"required": ["query"],
	"additionalProperties": true
}`

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// Validator wraps a compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the given schema document.
func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// ValidateBytes validates a raw JSON document.
func (v *Validator) ValidateBytes(doc []byte) *Result {
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return &Result{
			Valid:  false,
			Errors: []ValidationError{{Field: "(body)", Message: err.Error()}},
		}
	}

	if res.Valid() {
		return &Result{Valid: true}
	}

	out := &Result{Valid: false}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
		})
	}
	return out
}
