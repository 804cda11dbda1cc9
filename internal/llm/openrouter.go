package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider is an OpenAIProvider pointed at OpenRouter's
// OpenAI-compatible endpoint. Model IDs are vendor-prefixed
// ("openai/gpt-4o-mini") and passed through unchanged.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openrouter model is required")
	}

	conf := openai.DefaultConfig(cfg.APIKey)
	conf.BaseURL = cfg.BaseURL
	if conf.BaseURL == "" {
		conf.BaseURL = defaultOpenRouterBaseURL
	}
	if cfg.AppName != "" {
		conf.HTTPClient = &http.Client{
			Transport: titleTransport{title: cfg.AppName, next: http.DefaultTransport},
		}
	}

	return &OpenRouterProvider{OpenAIProvider: &OpenAIProvider{
		client:          openai.NewClientWithConfig(conf),
		model:           cfg.Model,
		legacyMaxTokens: true,
	}}, nil
}

// titleTransport stamps the X-Title attribution header on every request.
type titleTransport struct {
	title string
	next  http.RoundTripper
}

func (t titleTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Title", t.title)
	return t.next.RoundTrip(r)
}
