package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-2.5-pro", resolveModel("gemini-pro", geminiModels))
	assert.Equal(t, "gemini-2.5-flash-lite", resolveModel("gemini-2.5-flash-lite", geminiModels), "unknown IDs pass through")
}

func TestBuildGeminiSchema_PersonaList(t *testing.T) {
	def := map[string]any{
		"type":     "object",
		"required": []any{"personas"},
		"properties": map[string]any{
			"personas": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":   map[string]any{"type": "string"},
						"gender": map[string]any{"type": "string", "enum": []any{"Male", "Female"}},
						"age":    map[string]any{"type": []any{"integer", "string"}},
						"note":   map[string]any{"type": []any{"null", "string"}},
					},
				},
			},
		},
	}

	schema := buildGeminiSchema(def)

	require.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"personas"}, schema.Required)

	items := schema.Properties["personas"].Items
	require.NotNil(t, items)
	assert.Equal(t, genai.TypeObject, items.Type)
	assert.Equal(t, genai.TypeString, items.Properties["name"].Type)
	assert.Len(t, items.Properties["gender"].Enum, 2)
	assert.Equal(t, genai.TypeInteger, items.Properties["age"].Type, "first union member wins")
	assert.Nil(t, items.Properties["age"].Nullable)

	note := items.Properties["note"]
	assert.Equal(t, genai.TypeString, note.Type)
	require.NotNil(t, note.Nullable)
	assert.True(t, *note.Nullable)
}

func TestMapGeminiStopReason(t *testing.T) {
	res := func(reason genai.FinishReason) *genai.GenerateContentResponse {
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: reason}}}
	}
	assert.Equal(t, "end", mapGeminiStopReason(res(genai.FinishReasonStop)))
	assert.Equal(t, "max_tokens", mapGeminiStopReason(res(genai.FinishReasonMaxTokens)))
	assert.Equal(t, "end", mapGeminiStopReason(&genai.GenerateContentResponse{}))
}
