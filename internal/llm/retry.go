package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

// Retrier runs an operation with bounded attempts and a backoff between
// them. A Multiplier of 1 and zero Jitter gives a fixed delay.
type Retrier struct {
	config RetryConfig

	// Retryable decides whether err warrants another attempt. When nil,
	// every error except context cancellation and max-tokens is retried.
	Retryable func(err error) bool

	// OnRetry, when set, is called before sleeping for the next attempt.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// NewRetrier creates a Retrier for the given config.
func NewRetrier(cfg RetryConfig) *Retrier {
	return &Retrier{config: cfg}
}

// FixedDelay returns a config that makes attempts tries separated by a
// constant delay.
func FixedDelay(attempts int, delay time.Duration) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: delay,
		MaxWait:     delay,
		Multiplier:  1,
	}
}

// Do calls op until it succeeds, returns a non-retryable error, or the
// attempts are exhausted. The last error is returned on exhaustion.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(r.config.MaxAttempts, 1)

	var lastErr error
	for attempt := range attempts {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !r.shouldRetry(err) {
			return err
		}

		// Last attempt: return without sleeping.
		if attempt == attempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		if r.OnRetry != nil {
			r.OnRetry(attempt+1, err, wait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}

func (r *Retrier) shouldRetry(err error) bool {
	// Context errors are never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if r.Retryable != nil {
		return r.Retryable(err)
	}

	// Max tokens is a configuration issue, not transient.
	var maxTok *ErrMaxTokensExceeded
	return !errors.As(err, &maxTok)
}

// backoff computes the wait duration for the given attempt.
func (r *Retrier) backoff(attempt int, err error) time.Duration {
	// Respect RetryAfter for rate limits.
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	mult := r.config.Multiplier
	if mult <= 0 {
		mult = 1
	}
	wait := float64(r.config.InitialWait) * math.Pow(mult, float64(attempt))
	if r.config.MaxWait > 0 && wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	if r.config.Jitter > 0 {
		wait += wait * r.config.Jitter * (2*rand.Float64() - 1)
	}

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// RetryProvider is a decorator that retries transient errors with
// exponential backoff and jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	invalidRetried := false
	retrier := NewRetrier(r.config)
	retrier.Retryable = func(err error) bool {
		return shouldRetryProvider(err, &invalidRetried)
	}

	var resp *Response
	err := retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = r.inner.Generate(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetryProvider classifies provider-level errors.
func shouldRetryProvider(err error, invalidRetried *bool) bool {
	var maxTok *ErrMaxTokensExceeded
	if errors.As(err, &maxTok) {
		return false
	}

	// Invalid response gets one retry.
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
		return true
	}

	// Rate limits, unavailable providers, empty bodies and other network
	// errors are treated as transient.
	return true
}
