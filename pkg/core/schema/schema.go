// Package schema holds the report schema contract: the JSON Schema every
// generated report must satisfy, a flat description of its fields, and the
// structural checks the service relies on before trusting a schema file.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"property_report/resources"
)

// DefaultPath is the embedded location of the report schema.
const DefaultPath = "schemas/property_report.json"

const resourceURL = "property_report.json"

// ErrInvalidReport wraps instance validation failures.
var ErrInvalidReport = errors.New("report does not match schema")

// Schema is a parsed and compiled report schema.
type Schema struct {
	raw      []byte
	tree     map[string]interface{}
	compiled *jsonschema.Schema
}

// Load parses and compiles a JSON Schema document.
func Load(data []byte) (*Schema, error) {
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("schema is not a JSON object: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(resourceURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{raw: append([]byte(nil), data...), tree: tree, compiled: compiled}, nil
}

// Default loads the embedded report schema.
func Default() (*Schema, error) {
	data, err := fs.ReadFile(resources.FS, DefaultPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schema: %w", err)
	}
	return Load(data)
}

// Raw returns the schema document as loaded.
func (s *Schema) Raw() []byte { return s.raw }

// Document returns the decoded schema tree, suitable for sending to a
// provider as a structured output format.
func (s *Schema) Document() map[string]interface{} { return s.tree }

// Validate checks a generated report against the schema. Failures wrap
// ErrInvalidReport and list one violation per line.
func (s *Schema) Validate(report []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(report))
	if err != nil {
		return fmt.Errorf("%w: not valid JSON: %v", ErrInvalidReport, err)
	}
	if err := s.compiled.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return nil
}

// Violations splits a Validate error into individual messages.
func Violations(err error) []string {
	if err == nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
