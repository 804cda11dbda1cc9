package persona

import "github.com/abhisek/surveysim/internal/llm"

// PersonasSchema is the shape of a generation response and of subject
// snapshot files.
var PersonasSchema = &llm.Schema{
	Name:        "persona-list",
	Description: "Simulated survey respondents",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"personas": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"gender":      map[string]any{"type": "string", "description": "Male or Female"},
						"age":         map[string]any{"type": []any{"integer", "string"}},
						"occupation":  map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
					},
				},
			},
		},
		"required": []any{"personas"},
	},
}
