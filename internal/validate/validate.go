// Package validate checks request bodies against the named JSON schemas
// embedded in schemas/ and decodes them into typed values.
package validate

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/wondertwin-ai/todo-service/internal/apperr"
)

// Schema names.
const (
	Create = "create"
	Update = "update"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// messages replaces generic schema messages for specific keyword locations.
var messages = map[string]string{
	"/properties/title/minLength": "Title must be at least 2 characters",
	"/properties/title/type":      "Title must be a string",
	"/required":                   "Title is required",
}

// Validator holds the compiled schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	entries, err := fs.ReadDir(schemaFS, "schemas")
	if err != nil {
		return nil, fmt.Errorf("reading schemas: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(entries))}
	for _, e := range entries {
		data, err := fs.ReadFile(schemaFS, path.Join("schemas", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading schema %s: %w", e.Name(), err)
		}
		url := "mem://schemas/" + e.Name()
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("adding schema %s: %w", e.Name(), err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compiling schema %s: %w", e.Name(), err)
		}
		v.schemas[strings.TrimSuffix(e.Name(), ".json")] = schema
	}
	return v, nil
}

// Decode checks body against the named schema and, on success, decodes it
// into dst. An empty body is treated as an empty object. Every failure
// caused by the body is an apperr validation error.
func (v *Validator) Decode(name string, body []byte, dst any) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return apperr.Validationf("Invalid JSON body: %v", err)
	}
	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}

	// Decode only what the schema checked. encoding/json matches field names
	// case-insensitively, so "Title" would otherwise land in Title unchecked.
	clean, err := json.Marshal(knownProperties(schema, doc))
	if err != nil {
		return fmt.Errorf("re-encoding validated body: %w", err)
	}
	if err := json.Unmarshal(clean, dst); err != nil {
		return apperr.Validationf("Invalid request body: %v", err)
	}
	return nil
}

// knownProperties keeps the members of doc whose names exactly match a
// property declared by schema.
func knownProperties(schema *jsonschema.Schema, doc any) map[string]any {
	out := make(map[string]any, len(schema.Properties))
	obj, ok := doc.(map[string]any)
	if !ok {
		return out
	}
	for name := range schema.Properties {
		if v, ok := obj[name]; ok {
			out[name] = v
		}
	}
	return out
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return apperr.Validation(err.Error())
	}

	var msgs []string
	seen := make(map[string]bool)
	collect(ve, func(leaf *jsonschema.ValidationError) {
		msg := leafMessage(leaf)
		if !seen[msg] {
			seen[msg] = true
			msgs = append(msgs, msg)
		}
	})
	if len(msgs) == 0 {
		return apperr.Validation(ve.Message)
	}
	return apperr.Validation(strings.Join(msgs, "; "))
}

func collect(ve *jsonschema.ValidationError, fn func(*jsonschema.ValidationError)) {
	if len(ve.Causes) == 0 {
		fn(ve)
		return
	}
	for _, c := range ve.Causes {
		collect(c, fn)
	}
}

func leafMessage(ve *jsonschema.ValidationError) string {
	if msg, ok := messages[ve.KeywordLocation]; ok {
		return msg
	}
	field := strings.ReplaceAll(strings.TrimPrefix(ve.InstanceLocation, "/"), "/", ".")
	if field == "" {
		return "body: " + ve.Message
	}
	return field + ": " + ve.Message
}
