package normalize

// Config controls the normalization request.
type Config struct {
	// Temperature is kept low so repeated normalizations agree.
	Temperature float64

	// MaxTokens is the token budget for the structured question list.
	MaxTokens int

	// StructuredOutput asks the provider for schema-constrained output.
	// The response is validated against the schema either way.
	StructuredOutput bool
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		Temperature: 0.2,
		MaxTokens:   8192,
	}
}
