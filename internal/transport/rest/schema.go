/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package rest

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/TraceApi/roastery-core/internal/core/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://roastery.local/schemas/"

// Request body schemas.
const (
	originSchema     = "origin"
	greenBatchSchema = "green_batch"
	roastSchema      = "roast"
	recipeSchema     = "recipe"
	blendSchema      = "blend"
	saleSchema       = "sale"
)

// Schemas validates request bodies before they are decoded.
type Schemas struct {
	byName map[string]*jsonschema.Schema
}

func NewSchemas() (*Schemas, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schemas: %w", err)
	}
	for _, e := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", e.Name(), err)
		}
		if err := compiler.AddResource(schemaBaseURL+e.Name(), bytes.NewReader(raw)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", e.Name(), err)
		}
	}

	byName := make(map[string]*jsonschema.Schema)
	for _, name := range []string{originSchema, greenBatchSchema, roastSchema, recipeSchema, blendSchema, saleSchema} {
		schema, err := compiler.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
		}
		byName[name] = schema
	}
	return &Schemas{byName: byName}, nil
}

func MustSchemas() *Schemas {
	s, err := NewSchemas()
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks body against the named schema. Failures wrap domain.ErrInvalidInput.
func (s *Schemas) Validate(name string, body []byte) error {
	schema, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	// Numbers stay json.Number so kilos are checked without float rounding.
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidInput)
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, describe(ve))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// describe reports the first leaf failure, which names the offending field.
func describe(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	location := strings.TrimPrefix(ve.InstanceLocation, "/")
	if location == "" {
		return ve.Message
	}
	return location + ": " + ve.Message
}
