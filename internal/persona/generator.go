// Package persona generates simulated survey subjects with the oracle and
// loads saved subject lists.
package persona

import (
	"context"
	"fmt"
	"strings"

	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/survey"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Generator asks the oracle for cohorts of subjects.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
}

// NewGenerator wraps provider with retries and returns a Generator.
func NewGenerator(provider llm.Provider, cfg Config, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Retry.MaxAttempts > 0 {
		provider = llm.WithRetry(provider, cfg.Retry)
	}
	return &Generator{provider: provider, config: cfg, log: log}
}

// GenerateGroup returns the subjects the oracle produced for group, each
// tagged with the group. Fewer than Count subjects is not an error.
func (g *Generator) GenerateGroup(ctx context.Context, group Group) ([]survey.Subject, error) {
	if g.config.Count <= 0 {
		return nil, nil
	}
	ctx = llm.WithPurpose(ctx, "persona")

	req := llm.UserPrompt(buildPrompt(g.config, group), g.config.Temperature, g.config.MaxTokens)
	if g.config.StructuredOutput {
		req.Schema = PersonasSchema
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate %s personas: %w", group, err)
	}

	root, err := llm.ParseContent(PersonasSchema, resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s personas: %w", group, err)
	}

	subjects := decodeSubjects(root.Get("personas"), string(group))
	g.log.Info("generated personas",
		zap.String("group", string(group)),
		zap.Int("requested", g.config.Count),
		zap.Int("received", len(subjects)),
	)
	return subjects, nil
}

// GenerateAll generates every cohort in Groups order. A failing group
// aborts the whole generation.
func (g *Generator) GenerateAll(ctx context.Context) ([]survey.Subject, error) {
	var all []survey.Subject
	for _, group := range Groups {
		subjects, err := g.GenerateGroup(ctx, group)
		if err != nil {
			return nil, err
		}
		all = append(all, subjects...)
	}
	return all, nil
}

// decodeSubjects reads persona objects tolerantly. Nameless entries are
// dropped. A non-empty group overrides the entry's own group.
func decodeSubjects(arr gjson.Result, group string) []survey.Subject {
	var out []survey.Subject
	for _, item := range arr.Array() {
		if !item.IsObject() {
			continue
		}
		name := strings.TrimSpace(item.Get("name").String())
		if name == "" {
			continue
		}
		s := survey.Subject{
			Name:        name,
			Age:         int(item.Get("age").Int()),
			Gender:      strings.TrimSpace(item.Get("gender").String()),
			Occupation:  strings.TrimSpace(item.Get("occupation").String()),
			Description: strings.TrimSpace(item.Get("description").String()),
			Group:       group,
		}
		if s.Group == "" {
			s.Group = item.Get("group").String()
		}
		if s.Group == "" {
			s.Group = item.Get("socialStatus").String()
		}
		out = append(out, s)
	}
	return out
}

// Grouped splits subjects by Group, keeping first-seen group order and
// subject order within each group.
func Grouped(subjects []survey.Subject) (order []string, byGroup map[string][]survey.Subject) {
	byGroup = make(map[string][]survey.Subject)
	for _, s := range subjects {
		if _, ok := byGroup[s.Group]; !ok {
			order = append(order, s.Group)
		}
		byGroup[s.Group] = append(byGroup[s.Group], s)
	}
	return order, byGroup
}
