package answering

import "time"

// Config controls chunking, retries and sampling of the answer engine.
type Config struct {
	// ChunkSize bounds the number of questions sent in one request.
	ChunkSize int

	// MaxRetry is the number of attempts per chunk, including the first.
	MaxRetry int

	// RetryDelay is the fixed wait between attempts.
	RetryDelay time.Duration

	// Workers bounds how many chunks of one trial are in flight. 1 keeps
	// chunks strictly sequential.
	Workers int

	Temperature float64
	MaxTokens   int

	// KeywordSample is how many leading questions of a chunk feed the
	// retrieval keywords.
	KeywordSample int

	// StructuredOutput asks the provider for schema-constrained output.
	StructuredOutput bool
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:     25,
		MaxRetry:      3,
		RetryDelay:    2 * time.Second,
		Workers:       1,
		Temperature:   0.4,
		MaxTokens:     4096,
		KeywordSample: 5,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = d.MaxRetry
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.KeywordSample <= 0 {
		c.KeywordSample = d.KeywordSample
	}
	return c
}
