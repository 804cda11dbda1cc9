package normalize

import "github.com/abhisek/surveysim/internal/llm"

// loose lists the JSON types accepted for an item field. Every field may
// be null; decodeQuestions fills zero values and stringifies numbers.
func loose(types ...string) []any {
	out := make([]any, 0, len(types)+1)
	for _, t := range types {
		out = append(out, t)
	}
	return append(out, "null")
}

// QuestionsSchema is the minimal shape a normalization response must have:
// an object with a questions array. Item fields only describe the expected
// shape and admit nulls and numbers, so one sloppy field never rejects the
// whole list.
var QuestionsSchema = &llm.Schema{
	Name:        "survey-questions",
	Description: "Survey questions normalized from an OCR extraction",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"properties": map[string]any{
						"id":       map[string]any{"type": loose("string", "number"), "description": "Question number as printed, e.g. SQ1, Q4, DQ2"},
						"question": map[string]any{"type": loose("string", "number")},
						"type":     map[string]any{"type": loose("string"), "description": "text, table or multi"},
						"options":  map[string]any{"type": loose("array")},
						"rows": map[string]any{
							"type": loose("array"),
							"items": map[string]any{
								"properties": map[string]any{
									"id":    map[string]any{"type": loose("string", "number")},
									"label": map[string]any{"type": loose("string", "number")},
								},
							},
						},
						"scale":          map[string]any{"type": loose("array")},
						"allow_multiple": map[string]any{"type": loose("boolean", "string")},
					},
				},
			},
		},
		"required": []any{"questions"},
	},
}
