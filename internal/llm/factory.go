package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/surveysim/internal/store"
	"go.uber.org/zap"
)

// NewProvider creates a Provider from configuration, wrapped with the
// timeout and logging middleware. Retries are left to callers: the chunk
// engine retries whole parse steps and normalization is never retried.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *zap.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → logging → timeout → base
	return WithLogging(WithTimeout(base, cfg.Timeout), cfg.Provider, eventRepo, log), nil
}

// NewProviderFromEnv resolves configuration from SURVEYSIM_* variables,
// falling back to the standard vendor key variables.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo, log *zap.Logger) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, err
		}
		discovered.Timeout = cfg.Timeout
		cfg = discovered
	}
	return NewProvider(ctx, cfg, eventRepo, log)
}
