package answering

import "github.com/abhisek/surveysim/internal/llm"

// AnswersSchema is the envelope every chunk response must satisfy. Entry
// contents are filtered by Reconcile, not by the schema.
var AnswersSchema = &llm.Schema{
	Name:        "survey-answers",
	Description: "Answers to a batch of survey questions keyed by question id",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"properties": map[string]any{
						"id":     map[string]any{"description": "One of the given question ids, unchanged"},
						"answer": map[string]any{"description": "The chosen option text, options joined by \", \" for multi, or a short sentence"},
					},
				},
			},
		},
		"required": []any{"answers"},
	},
}
