package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

func TestRetryAttempts(t *testing.T) {
	permanent := errors.New("permanent")
	tests := []struct {
		name      string
		failures  int
		attempts  int
		retryIf   func(error) bool
		wantCalls int
		wantErr   bool
	}{
		{"first attempt succeeds", 0, 3, nil, 1, false},
		{"succeeds after retries", 2, 3, nil, 3, false},
		{"gives up after max attempts", 5, 3, nil, 3, true},
		{"non-retryable error stops", 5, 3, func(err error) bool { return !errors.Is(err, permanent) }, 1, true},
		{"zero attempts use default", 5, 0, nil, 3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fastConfig(tt.attempts)
			cfg.RetryIf = tt.retryIf
			calls := 0
			got, err := Retry(context.Background(), cfg, func() (int, error) {
				calls++
				if calls <= tt.failures {
					return 0, permanent
				}
				return 42, nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != 42 {
				t.Errorf("result = %d, want 42", got)
			}
			if err != nil && !errors.Is(err, permanent) {
				t.Errorf("expected last error, got %v", err)
			}
		})
	}
}

func TestRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{MaxAttempts: 10, InitialBackoff: time.Second}
	calls := 0
	err := RetryFunc(ctx, cfg, func() error {
		calls++
		cancel()
		return errors.New("unavailable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDefaultRetryIfSkipsContextErrors(t *testing.T) {
	if DefaultRetryIf(context.Canceled) || DefaultRetryIf(context.DeadlineExceeded) {
		t.Error("context errors must not be retried")
	}
	if !DefaultRetryIf(errors.New("503")) {
		t.Error("plain errors must be retried")
	}
}

func TestRetryOnRetryCallback(t *testing.T) {
	cfg := fastConfig(3)
	var seen []int
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		seen = append(seen, attempt)
		if backoff <= 0 {
			t.Errorf("backoff for attempt %d = %v", attempt, backoff)
		}
	}
	_ = RetryFunc(context.Background(), cfg, func() error { return errors.New("down") })
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", seen)
	}
}

func TestBackoff(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{6, time.Second},
	}
	for _, tt := range tests {
		if got := cfg.Backoff(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoffJitterStaysInRange(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: 100 * time.Millisecond, MaxBackoff: time.Second, BackoffFactor: 2, Jitter: 0.5}
	for i := 0; i < 50; i++ {
		d := cfg.Backoff(1)
		if d < 50*time.Millisecond || d > 150*time.Millisecond {
			t.Fatalf("jittered backoff %v outside [50ms, 150ms]", d)
		}
	}
}
