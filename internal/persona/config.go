package persona

import (
	"time"

	"github.com/abhisek/surveysim/internal/llm"
)

// Group is a cohort of simulated subjects.
type Group string

const (
	GroupJunior Group = "junior"
	GroupSenior Group = "senior"
)

// Groups lists the cohorts generated by GenerateAll, in order.
var Groups = []Group{GroupJunior, GroupSenior}

// Config controls persona generation requests.
type Config struct {
	// Field is the professional field every persona works in.
	Field string

	// Count is the number of personas per group.
	Count int

	// FemaleRatio is the target share of female personas, 0-100.
	FemaleRatio int

	Temperature float64
	MaxTokens   int

	// StructuredOutput asks the provider for schema-constrained output.
	StructuredOutput bool

	// Retry wraps the provider for generation requests only.
	Retry llm.RetryConfig
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		Field:       "general office work",
		Count:       5,
		FemaleRatio: 50,
		Temperature: 0.8,
		MaxTokens:   4096,
		Retry: llm.RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
			Jitter:      0.2,
		},
	}
}
