package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidCatalog is returned when a words document fails validation.
var ErrInvalidCatalog = errors.New("invalid word catalog")

const schemaURL = "schema://words.json"

const payloadSchema = `{
	"type": "object",
	"required": ["words"],
	"properties": {
		"version": {"type": ["string", "null"]},
		"generated": {"type": ["string", "null"]},
		"sheet": {"type": ["string", "null"]},
		"count": {"type": "integer", "minimum": 0},
		"words": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "ord"],
				"properties": {
					"id": {"type": "integer", "minimum": 1},
					"ord": {"type": "string", "minLength": 1},
					"niveau": {"type": ["integer", "null"]},
					"raw": {"type": ["object", "null"]}
				}
			}
		}
	}
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payloadSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// validate checks raw JSON against the words schema.
func validate(raw []byte) error {
	sch, err := schema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return nil
}
