package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema definition used to check generated content.
type Schema struct {
	Name       string
	Definition map[string]any
}

// ExerciseSchema describes one generated multiple-choice exercise.
var ExerciseSchema = &Schema{
	Name: "exercice",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"question", "options", "correct_index"},
		"properties": map[string]any{
			"question":         map[string]any{"type": "string", "minLength": 1},
			"type":             map[string]any{"type": "string"},
			"options":          map[string]any{"type": "array", "minItems": 2, "items": map[string]any{"type": "string"}},
			"correct_index":    map[string]any{"type": "integer", "minimum": 0},
			"feedback_success": map[string]any{"type": "string"},
			"feedback_fail":    map[string]any{"type": "string"},
			"difficulte":       map[string]any{"type": "integer", "minimum": 1, "maximum": 3},
			"topic_id":         map[string]any{"type": "integer"},
		},
	},
}

// TopicSchema describes one generated curriculum topic.
var TopicSchema = &Schema{
	Name: "topic",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"titre", "resume"},
		"properties": map[string]any{
			"titre":  map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
			"resume": map[string]any{"type": "string", "minLength": 1},
			"ordre":  map[string]any{"type": "integer"},
		},
	},
}

var schemaCache sync.Map // map[string]*jsonschema.Schema

// Validate checks raw JSON against schema and returns *ErrInvalidResponse on failure.
func Validate(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}

	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: string(raw), Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return &ErrInvalidResponse{Content: string(raw), Err: fmt.Errorf("compile schema %q: %w", schema.Name, err)}
	}
	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidResponse{Content: string(raw), Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a decoded JSON value, not Go maps with typed slices.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
