package transcribe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyStopsOnSuccess(t *testing.T) {
	calls := 0
	attempts, err := DefaultRetryPolicy().Do(context.Background(), func(context.Context, int) error {
		calls++
		if calls < 2 {
			return errors.New("rate limited")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if attempts != 2 || calls != 2 {
		t.Fatalf("attempts = %d, calls = %d; want 2", attempts, calls)
	}
}

func TestRetryPolicyExhausts(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 3}
	attempts, err := policy.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errors.New("boom")
	})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 3 || calls != 3 {
		t.Fatalf("attempts = %d, calls = %d; want 3", attempts, calls)
	}
}

func TestRetryPolicyZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_, _ = RetryPolicy{}.Do(context.Background(), func(context.Context, int) error {
		calls++
		return errors.New("boom")
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRetryPolicyHonoursCancellationDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := RetryPolicy{MaxAttempts: 5, Backoff: time.Hour}
	_, err := policy.Do(ctx, func(context.Context, int) error {
		calls++
		cancel()
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
