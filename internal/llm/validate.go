package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/surveysim/internal/jsonclean"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/gjson"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// ParseContent turns raw model output into a JSON tree. The content is
// stripped of prose and code fences, checked for validity and, when a
// schema is given, validated against it.
//
// Returns *ErrEmptyContent for a blank body and *ErrInvalidResponse when
// the cleaned text is not a JSON object matching the schema.
func ParseContent(schema *Schema, content string) (gjson.Result, error) {
	if strings.TrimSpace(content) == "" {
		return gjson.Result{}, &ErrEmptyContent{}
	}

	cleaned := jsonclean.Clean(content)
	if !gjson.Valid(cleaned) {
		return gjson.Result{}, &ErrInvalidResponse{
			Content: content,
			Err:     fmt.Errorf("cleaned content is not valid JSON"),
		}
	}

	root := gjson.Parse(cleaned)
	if !root.IsObject() {
		return gjson.Result{}, &ErrInvalidResponse{
			Content: content,
			Err:     fmt.Errorf("expected a JSON object, got %s", root.Type),
		}
	}

	if err := ValidateJSON(schema, []byte(cleaned)); err != nil {
		return gjson.Result{}, err
	}
	return root, nil
}

// ValidateJSON validates raw JSON against the given Schema.
// Returns nil if no schema is provided or validation passes.
// Returns *ErrInvalidResponse on failure.
func ValidateJSON(schema *Schema, raw []byte) error {
	if schema == nil {
		return nil
	}

	// Parse JSON first.
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidResponse{
			Content: string(raw),
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := getCompiledSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{
			Content: string(raw),
			Err:     fmt.Errorf("compile schema %q: %w", schema.Name, err),
		}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{
			Content: string(raw),
			Err:     fmt.Errorf("schema validation failed: %w", err),
		}
	}

	return nil
}

// getCompiledSchema returns a cached compiled schema or compiles and caches it.
func getCompiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value (any), not raw bytes.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
