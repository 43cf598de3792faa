package resilience

import (
	"context"
	"fmt"
	"time"
)

// Backoff selects how the delay between attempts grows.
type Backoff string

const (
	// BackoffLinear waits BaseDelay between every attempt.
	BackoffLinear Backoff = "linear"
	// BackoffExponential waits BaseDelay * 2^(attempt-1).
	BackoffExponential Backoff = "exponential"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxRetries is the maximum number of attempts (including the first).
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// Backoff selects linear or exponential delay growth.
	Backoff Backoff
	// OnRetry is called after the backoff wait, just before the next attempt.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		Backoff:    BackoffExponential,
	}
}

// ExhaustedError is returned when an operation fails on every attempt.
// It carries the attempt count and the last underlying error.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

// Error returns the string representation of the error.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.LastErr)
}

// Unwrap returns the last underlying error.
func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// Retry executes fn with retry logic. On failure it waits per the
// configured backoff, then invokes OnRetry if present, and tries again.
// After MaxRetries failed attempts it returns *ExhaustedError.
//
// The sleep is context-aware: a canceled context aborts the wait and
// returns ctx.Err() without a further attempt.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.Backoff == "" {
		cfg.Backoff = BackoffExponential
	}

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == cfg.MaxRetries {
			break
		}

		timer := time.NewTimer(delayFor(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}
	}

	return zero, &ExhaustedError{Attempts: cfg.MaxRetries, LastErr: lastErr}
}

// RetryFunc executes a function that returns only an error.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := Retry(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// delayFor calculates the delay after the given failed attempt.
func delayFor(attempt int, cfg RetryConfig) time.Duration {
	if cfg.Backoff == BackoffLinear {
		return cfg.BaseDelay
	}
	return cfg.BaseDelay << (attempt - 1)
}
