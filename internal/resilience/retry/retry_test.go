package retry

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       10 * time.Millisecond,
		Multiplier:     2.0,
		JitterFraction: 0,
	}
}

func TestWithBackoffSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestWithBackoffRetriesServerError(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: 503, Message: "unavailable"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWithBackoffDoesNotRetryClientError(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		return &HTTPError{StatusCode: 404, Message: "not found"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected 1 call for non-retryable error, got %d", calls)
	}
}

func TestWithBackoffExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(), func() error {
		calls++
		return &HTTPError{StatusCode: 500, Message: "boom"}
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Error("expected wrapped HTTPError")
	}
}

func TestWithBackoffHonorsRetryAfter(t *testing.T) {
	cfg := fastConfig()
	calls := 0
	start := time.Now()
	err := WithBackoff(context.Background(), cfg, func() error {
		calls++
		if calls == 1 {
			return &HTTPError{
				StatusCode: 429,
				Message:    "slow down",
				RetryAfter: 50 * time.Millisecond,
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("expected to wait at least Retry-After, waited %v", elapsed)
	}
}

func TestWithBackoffStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.InitialDelay = time.Second

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := WithBackoff(ctx, cfg, func() error {
		calls++
		return &HTTPError{StatusCode: 500, Message: "boom"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context cancel", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"408", &HTTPError{StatusCode: 408}, true},
		{"404", &HTTPError{StatusCode: 404}, false},
		{"400", &HTTPError{StatusCode: 400}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
