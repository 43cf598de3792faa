package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond}
	callCount := 0

	result, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call, got %d", callCount)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 5, BaseDelay: time.Millisecond, Backoff: BackoffLinear}
	callCount := 0
	var retries []int

	cfg.OnRetry = func(attempt int, err error) {
		retries = append(retries, attempt)
	}

	result, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		if callCount < 3 {
			return "", errors.New("temporary error")
		}
		return "success", nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %s", result)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
	if len(retries) != 2 || retries[0] != 1 || retries[1] != 2 {
		t.Errorf("expected retries [1 2], got %v", retries)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond}
	lastErr := errors.New("persistent failure")
	callCount := 0

	_, err := Retry(context.Background(), cfg, func() (string, error) {
		callCount++
		return "", lastErr
	})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", exhausted.Attempts)
	}
	if !errors.Is(err, lastErr) {
		t.Error("expected last error to be unwrappable")
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestRetry_NoSleepAfterLastAttempt(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, BaseDelay: time.Hour}
	onRetryCalls := 0
	cfg.OnRetry = func(int, error) { onRetryCalls++ }

	// A 1-hour base delay would hang the test if the executor slept
	// after the final attempt. The only sleep (and the only observer
	// call, which follows it) happens between attempt 1 and 2, so set
	// base delay small and count observer calls.
	cfg.BaseDelay = time.Millisecond

	start := time.Now()
	_, err := Retry(context.Background(), cfg, func() (int, error) {
		return 0, errors.New("nope")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if onRetryCalls != 1 {
		t.Errorf("expected 1 OnRetry call, got %d", onRetryCalls)
	}
	if time.Since(start) > time.Second {
		t.Error("retry took too long; must not sleep after the last attempt")
	}
}

func TestRetry_ObserverFiresAfterBackoffWait(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 2, BaseDelay: 30 * time.Millisecond, Backoff: BackoffLinear}
	var observedAt time.Duration
	start := time.Now()

	cfg.OnRetry = func(int, error) { observedAt = time.Since(start) }

	_, err := Retry(context.Background(), cfg, func() (int, error) {
		return 0, errors.New("fail")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if observedAt < cfg.BaseDelay {
		t.Errorf("observer fired %v after start, before the %v backoff elapsed", observedAt, cfg.BaseDelay)
	}
}

func TestRetry_ExponentialDelayGrowth(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 4, BaseDelay: 10 * time.Millisecond, Backoff: BackoffExponential}

	if d := delayFor(1, cfg); d != 10*time.Millisecond {
		t.Errorf("attempt 1: expected 10ms, got %v", d)
	}
	if d := delayFor(2, cfg); d != 20*time.Millisecond {
		t.Errorf("attempt 2: expected 20ms, got %v", d)
	}
	if d := delayFor(3, cfg); d != 40*time.Millisecond {
		t.Errorf("attempt 3: expected 40ms, got %v", d)
	}

	cfg.Backoff = BackoffLinear
	if d := delayFor(3, cfg); d != 10*time.Millisecond {
		t.Errorf("linear attempt 3: expected 10ms, got %v", d)
	}
}

func TestRetry_ContextCancelDuringWait(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 5, BaseDelay: time.Minute}
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Retry(ctx, cfg, func() (int, error) {
		return 0, errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBulkhead_LimitsConcurrency(t *testing.T) {
	b := NewBulkhead("chunks", 2)
	var peak, current atomic.Int32
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = b.Execute(context.Background(), func() error {
				now := current.Add(1)
				if now > peak.Load() {
					peak.Store(now)
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return nil
			})
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent executions, saw %d", peak.Load())
	}
}

func TestBulkhead_ContextCancelWhileWaiting(t *testing.T) {
	b := NewBulkhead("busy", 1)
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = b.Execute(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := b.Execute(ctx, func() error { return nil })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	close(release)
}
