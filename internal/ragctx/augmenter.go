package ragctx

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const contextHeader = "[Reference statistics]"

// Augmenter turns retrieval results into a prompt context block. It never
// fails: any error yields "".
type Augmenter struct {
	client *Client
	cache  Cache
	log    *zap.Logger
}

// NewAugmenter creates an Augmenter. cache may be nil.
func NewAugmenter(client *Client, cache Cache, log *zap.Logger) *Augmenter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Augmenter{client: client, cache: cache, log: log}
}

// Context returns up to a handful of statistics lines for query, filtered
// by attribute, or "" when nothing useful comes back.
func (a *Augmenter) Context(ctx context.Context, query, attribute string) string {
	key := query + "|" + attribute

	if a.cache != nil {
		if results, ok := a.cache.Get(ctx, key); ok {
			return formatContext(results)
		}
	}

	results, err := a.client.Search(ctx, Query{Query: query, Gender: attribute})
	if err != nil {
		a.log.Debug("retrieval failed", zap.String("query", query), zap.Error(err))
		return ""
	}

	text := formatContext(results)
	if text != "" && a.cache != nil {
		a.cache.Set(ctx, key, results)
	}
	return text
}

func formatContext(results []Result) string {
	var lines []string
	for _, r := range results {
		if t := strings.TrimSpace(r.Text); t != "" {
			lines = append(lines, "- "+t)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return contextHeader + "\n" + strings.Join(lines, "\n") + "\n"
}
