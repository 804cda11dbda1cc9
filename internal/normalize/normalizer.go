// Package normalize turns a raw OCR extraction into canonical survey
// questions with one oracle request.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/survey"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Normalizer asks the oracle to structure an extraction into questions.
type Normalizer struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
}

// New creates a Normalizer.
func New(provider llm.Provider, cfg Config, log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{provider: provider, config: cfg, log: log}
}

// Normalize sends one request and decodes the returned question list.
// It is never retried.
//
// Transport failures and empty content are returned as errors. When the
// cleaned content is not an object with a questions array, Normalize
// returns an empty list together with the *llm.ErrInvalidResponse so the
// caller decides whether to abort.
func (n *Normalizer) Normalize(ctx context.Context, rawExtraction string) ([]survey.Question, error) {
	ctx = llm.WithPurpose(ctx, "normalize")

	req := llm.UserPrompt(buildPrompt(rawExtraction), n.config.Temperature, n.config.MaxTokens)
	if n.config.StructuredOutput {
		req.Schema = QuestionsSchema
	}

	resp, err := n.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("normalization request failed: %w", err)
	}

	root, err := llm.ParseContent(QuestionsSchema, resp.Content)
	if err != nil {
		var empty *llm.ErrEmptyContent
		if errors.As(err, &empty) {
			return nil, err
		}
		n.log.Warn("normalization response did not match schema",
			zap.Error(err),
			zap.Int("content_bytes", len(resp.Content)),
		)
		return []survey.Question{}, err
	}

	questions := decodeQuestions(root.Get("questions"))
	n.log.Info("normalized survey", zap.Int("questions", len(questions)))
	return questions, nil
}

// decodeQuestions reads the questions array tolerantly. Non-object items
// are skipped; missing fields take zero values.
func decodeQuestions(arr gjson.Result) []survey.Question {
	items := arr.Array()
	out := make([]survey.Question, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		q := survey.Question{
			ID:            strings.TrimSpace(item.Get("id").String()),
			Text:          item.Get("question").String(),
			Kind:          survey.Kind(strings.ToLower(strings.TrimSpace(item.Get("type").String()))),
			Options:       stringList(item.Get("options")),
			Scale:         stringList(item.Get("scale")),
			AllowMultiple: truthy(item.Get("allow_multiple")),
		}
		if q.Text == "" {
			q.Text = item.Get("text").String()
		}
		for _, row := range item.Get("rows").Array() {
			switch {
			case row.IsObject():
				q.Rows = append(q.Rows, survey.TableRow{
					ID:    strings.TrimSpace(row.Get("id").String()),
					Label: row.Get("label").String(),
				})
			case row.Type == gjson.String:
				q.Rows = append(q.Rows, survey.TableRow{Label: row.String()})
			}
		}
		out = append(out, q)
	}
	return out
}

// stringList converts an array of scalars to strings, skipping nulls and
// nested values.
func stringList(v gjson.Result) []string {
	if !v.IsArray() {
		return nil
	}
	var out []string
	for _, e := range v.Array() {
		switch e.Type {
		case gjson.String, gjson.Number, gjson.True, gjson.False:
			out = append(out, e.String())
		}
	}
	return out
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.String:
		return strings.EqualFold(strings.TrimSpace(v.Str), "true")
	default:
		return false
	}
}
