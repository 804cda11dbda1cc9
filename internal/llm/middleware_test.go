package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/surveysim/internal/store"
	"go.uber.org/zap/zaptest"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestWithLogging_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Content: `{"answers":[]}`,
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, "openai", repo, zaptest.NewLogger(t))

	ctx := WithPurpose(context.Background(), "answer")
	if _, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "Q1?"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Provider != "openai" || e.Model != "mock" || e.Purpose != "answer" {
		t.Fatalf("unexpected identity fields: %+v", e)
	}
	if !e.Success || e.InputTokens != 12 || e.OutputTokens != 3 {
		t.Fatalf("unexpected usage fields: %+v", e)
	}
	if e.RequestBody != "[system]\nsys\n\n[user]\nQ1?\n\n" {
		t.Fatalf("unexpected request body %q", e.RequestBody)
	}
	if e.ResponseBody != `{"answers":[]}` {
		t.Fatalf("unexpected response body %q", e.ResponseBody)
	}
}

func TestWithLogging_RecordsFailureAndIgnoresRepoError(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	p := WithLogging(mock, "openai", repo, nil)

	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected provider error to pass through, got %v", err)
	}
	if len(repo.events) != 1 || repo.events[0].Success || repo.events[0].ErrorMessage == "" {
		t.Fatalf("failure not recorded: %+v", repo.events)
	}
	if repo.events[0].Purpose != "unknown" {
		t.Fatalf("purpose = %q, want unknown", repo.events[0].Purpose)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout_OwnDeadlineIsTransport(t *testing.T) {
	p := WithTimeout(slowProvider{}, 5*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %T (%v)", err, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("own timeout must not look like caller cancellation")
	}
}

func TestWithTimeout_ParentCancellationPassesThrough(t *testing.T) {
	p := WithTimeout(slowProvider{}, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected caller deadline, got %v", err)
	}
}

func TestWithTimeout_ZeroIsPassthrough(t *testing.T) {
	mock := NewMockProvider()
	if p := WithTimeout(mock, 0); p != Provider(mock) {
		t.Fatal("zero timeout should return the provider unchanged")
	}
}
