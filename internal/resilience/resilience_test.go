package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"moneylens/internal/resilience"
)

func fastConfig(retries int) resilience.Config {
	return resilience.Config{MaxRetries: retries, InitialBackoff: time.Millisecond}
}

func TestRetryWithBackoff(t *testing.T) {
	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := resilience.RetryWithBackoff(t.Context(), fastConfig(3), func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := resilience.RetryWithBackoff(t.Context(), fastConfig(3), func() error {
			calls++
			if calls < 3 {
				return errors.New("temporary")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := resilience.RetryWithBackoff(t.Context(), fastConfig(2), func() error {
			calls++
			return errors.New("down")
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		cause := errors.New("bad request")
		calls := 0
		err := resilience.RetryWithBackoff(t.Context(), fastConfig(5), func() error {
			calls++
			return resilience.Permanent(cause)
		})
		if !errors.Is(err, cause) {
			t.Fatalf("expected wrapped cause, got %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("cancelled context stops immediately", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		calls := 0
		err := resilience.RetryWithBackoff(ctx, fastConfig(5), func() error {
			calls++
			return errors.New("down")
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if calls != 0 {
			t.Errorf("calls = %d, want 0", calls)
		}
	})
}

func TestPermanent_nil(t *testing.T) {
	if resilience.Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
	if resilience.IsPermanent(errors.New("x")) {
		t.Error("plain error reported as permanent")
	}
}

func TestCall_opensBreaker(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")
	for i := 0; i < 5; i++ {
		_ = resilience.Call(t.Context(), cb, fastConfig(0), func() error {
			return errors.New("down")
		})
	}
	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	called := false
	err := resilience.Call(t.Context(), cb, fastConfig(0), func() error {
		called = true
		return nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected ErrOpenState, got %v", err)
	}
	if called {
		t.Error("fn ran while breaker was open")
	}
}

func TestCall_permanentErrorsKeepBreakerClosed(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test")
	for i := 0; i < 10; i++ {
		_ = resilience.Call(t.Context(), cb, fastConfig(0), func() error {
			return resilience.Permanent(errors.New("not found"))
		})
	}
	if cb.State() != gobreaker.StateClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
}

func TestBulkhead(t *testing.T) {
	b := resilience.NewBulkhead(1)
	if err := b.Acquire(t.Context()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	if err := b.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	b.Release()
	if err := b.Acquire(t.Context()); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	b.Release()
}
