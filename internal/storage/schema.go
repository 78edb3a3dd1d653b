package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed results.schema.json
var resultsSchemaData []byte

var (
	resultsSchema *jsonschema.Schema
	compileOnce   sync.Once
	compileErr    error
)

func compileSchema() error {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(resultsSchemaData))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal results schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("results.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add results schema resource: %w", err)
			return
		}
		resultsSchema, err = compiler.Compile("results.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile results schema: %w", err)
		}
	})
	return compileErr
}

// ValidateResults checks data against the results file schema
func ValidateResults(data []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := resultsSchema.Validate(v); err != nil {
		return fmt.Errorf("results validation failed: %w", err)
	}
	return nil
}
