package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/surveysim/internal/answering"
	"github.com/abhisek/surveysim/internal/extract"
	"github.com/abhisek/surveysim/internal/llm"
	"github.com/abhisek/surveysim/internal/ragctx"
	"github.com/abhisek/surveysim/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newProvider(ctx context.Context, st *store.Store) (llm.Provider, error) {
	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo(), logger)
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	return provider, nil
}

func newExtractor() extract.Extractor {
	if cfg.Extractor.Command == "" {
		return extract.FileExtractor{}
	}
	return &extract.ScriptExtractor{
		Command: cfg.Extractor.Command,
		Args:    cfg.Extractor.Args,
		Timeout: cfg.ExtractorTimeout(),
		Log:     logger,
	}
}

// newAugmenter returns the retrieval context provider, or nil when
// retrieval is disabled or the service does not answer its health check.
// The returned cleanup closes the Redis client if one was opened.
func newAugmenter(ctx context.Context) (answering.ContextProvider, func()) {
	noop := func() {}
	if !cfg.RAG.Enabled {
		return nil, noop
	}

	client := ragctx.NewClient(cfg.RAG.BaseURL, cfg.RAGTimeout())
	if !client.Healthy(ctx) {
		logger.Warn("retrieval service unavailable, answering without context", zap.String("url", cfg.RAG.BaseURL))
		return nil, noop
	}

	if cfg.RAG.RedisAddr == "" {
		return ragctx.NewAugmenter(client, ragctx.NewMemoryCache(cfg.RAGCacheTTL()), logger), noop
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RAG.RedisAddr,
		Password: cfg.RAG.RedisPassword,
		DB:       cfg.RAG.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, caching retrieval context in memory", zap.String("addr", cfg.RAG.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return ragctx.NewAugmenter(client, ragctx.NewMemoryCache(cfg.RAGCacheTTL()), logger), noop
	}
	cleanup := func() { _ = rdb.Close() }
	return ragctx.NewAugmenter(client, ragctx.NewRedisCache(rdb, cfg.RAGCacheTTL()), logger), cleanup
}
