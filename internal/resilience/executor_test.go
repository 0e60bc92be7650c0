package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

func TestExecuteRetriesTemporaryFailure(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	}, zerolog.Nop())

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Execute(context.Background(), "render", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteDoesNotRetryDeadline(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		BreakerEnabled:      false,
	}, zerolog.Nop())

	attempts := 0
	err := exec.Execute(context.Background(), "render", func(context.Context) error {
		attempts++
		return context.DeadlineExceeded
	}, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Config{
		RetryMaxAttempts:        1,
		RetryInitialBackoff:     time.Millisecond,
		RetryMaxBackoff:         time.Millisecond,
		RetryMultiplier:         2,
		BreakerEnabled:          true,
		BreakerMinRequests:      2,
		BreakerFailureRatio:     0.5,
		BreakerOpenTimeout:      50 * time.Millisecond,
		BreakerHalfOpenMaxCalls: 1,
	}, zerolog.Nop())

	errRender := errors.New("renderer unavailable")
	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "render", func(context.Context) error {
			return errRender
		}, nil)
		if !errors.Is(err, errRender) {
			t.Fatalf("expected render error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "render", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, nil)
	if !errors.Is(err, gobreaker.ErrOpenState) || !IsCircuitOpen(err) {
		t.Fatalf("expected open state error, got %v", err)
	}
}
