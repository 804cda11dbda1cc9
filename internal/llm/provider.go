package llm

import (
	"context"
)

// Provider is the oracle port. Every prompt the simulator sends (question
// structuring, persona generation, chunk answering) goes through it.
type Provider interface {
	// Generate sends a prompt to the model and returns its text output.
	// The Schema field, when set, asks the provider to use its native
	// structured output mechanism. Providers never validate the output;
	// callers clean and validate it with ParseContent.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Most survey prompts are self-contained
	// user messages and leave this empty.
	System string

	// Messages is the conversation history. Survey prompts are single-turn.
	Messages []Message

	// Schema is the JSON Schema the response should conform to. Only set
	// when native structured output is enabled.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies this schema (tool name for Anthropic, schema name
	// for OpenAI, cache key for validation). Kebab-case.
	Name string

	// Description is a human-readable description of the payload.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is the raw message text, i.e. choices[0].message.content for
	// chat-completion style APIs. It may be wrapped in prose or code fences.
	Content string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds the common single-message request.
func UserPrompt(prompt string, temperature float64, maxTokens int) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}
