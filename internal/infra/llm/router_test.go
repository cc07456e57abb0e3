package llm

import (
	"context"
	"errors"
	"testing"
)

// stubClient is a scriptable Client for router tests.
type stubClient struct {
	name      string
	response  string
	err       error
	available bool
	calls     int
}

func (s *stubClient) Generate(_ context.Context, _ string, _ Options) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubClient) IsAvailable(_ context.Context) bool { return s.available }
func (s *stubClient) Name() string                       { return s.name }

func TestRouterUsesPrimary(t *testing.T) {
	primary := &stubClient{name: "ollama", response: "from primary", available: true}
	fallback := &stubClient{name: "claude", response: "from fallback", available: true}

	r := NewRouter(primary, fallback, testLogger())
	got, err := r.Generate(context.Background(), "p", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from primary" {
		t.Errorf("expected primary response, got %q", got)
	}
	if fallback.calls != 0 {
		t.Error("fallback should not be called")
	}
}

func TestRouterFallsBackOnPrimaryError(t *testing.T) {
	primary := &stubClient{name: "ollama", err: errors.New("boom"), available: true}
	fallback := &stubClient{name: "claude", response: "from fallback", available: true}

	r := NewRouter(primary, fallback, testLogger())
	got, err := r.Generate(context.Background(), "p", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from fallback" {
		t.Errorf("expected fallback response, got %q", got)
	}
}

func TestRouterSkipsUnavailablePrimary(t *testing.T) {
	primary := &stubClient{name: "ollama", response: "never", available: false}
	fallback := &stubClient{name: "claude", response: "from fallback", available: true}

	r := NewRouter(primary, fallback, testLogger())
	got, err := r.Generate(context.Background(), "p", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from fallback" {
		t.Errorf("expected fallback response, got %q", got)
	}
	if primary.calls != 0 {
		t.Error("unavailable primary should not be called")
	}
}

func TestRouterNoFallbackReturnsError(t *testing.T) {
	primary := &stubClient{name: "ollama", err: errors.New("boom"), available: true}

	r := NewRouter(primary, nil, testLogger())
	if _, err := r.Generate(context.Background(), "p", Options{}); err == nil {
		t.Fatal("expected error with no fallback")
	}
}

func TestRouterBothFail(t *testing.T) {
	primary := &stubClient{name: "ollama", err: errors.New("p-boom"), available: true}
	fallback := &stubClient{name: "claude", err: errors.New("f-boom"), available: true}

	r := NewRouter(primary, fallback, testLogger())
	_, err := r.Generate(context.Background(), "p", Options{})
	if err == nil {
		t.Fatal("expected error when both providers fail")
	}
}

func TestRouterDoesNotFallBackAfterCancel(t *testing.T) {
	primary := &stubClient{name: "ollama", err: context.Canceled, available: true}
	fallback := &stubClient{name: "claude", response: "late", available: true}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRouter(primary, fallback, testLogger())
	_, err := r.Generate(ctx, "p", Options{})
	if err == nil {
		t.Fatal("expected error")
	}
	if fallback.calls != 0 {
		t.Error("fallback must not run once the search is cancelled")
	}
}

func TestRouterIsAvailable(t *testing.T) {
	primary := &stubClient{name: "ollama", available: false}
	fallback := &stubClient{name: "claude", available: true}

	r := NewRouter(primary, fallback, testLogger())
	if !r.IsAvailable(context.Background()) {
		t.Error("expected available via fallback")
	}

	fallback.available = false
	if r.IsAvailable(context.Background()) {
		t.Error("expected unavailable when both are down")
	}
}
