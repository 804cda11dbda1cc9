package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // id > After
	Before  int64     // id < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match when set
	Failed  bool      // only unsuccessful requests
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// TrialRecord is the ledger entry for one answered trial.
type TrialRecord struct {
	ID           int
	Timestamp    time.Time
	RunID        string
	Track        string
	Label        string
	Subject      string
	Trial        int
	Version      int
	Questions    int
	Answered     int
	Chunks       int
	FailedChunks int
	Written      bool
	ErrorMessage string
	Path         string
}

// Degraded reports whether at least one chunk of the trial failed.
func (r TrialRecord) Degraded() bool {
	return r.FailedChunks > 0
}

// RunSummary aggregates the trials of one run.
type RunSummary struct {
	RunID     string
	Version   int
	Started   time.Time
	Trials    int
	Degraded  int
	Failed    int
	Questions int
}

// TrialRepo records and lists trial outcomes.
type TrialRepo interface {
	RecordTrial(ctx context.Context, rec TrialRecord) error
}
