package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"event-scraper/internal/resilience/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastRetry() retry.Config {
	return retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "qwen2.5:3b" {
			t.Errorf("unexpected model: %s", req.Model)
		}
		if req.Stream {
			t.Error("stream should be disabled")
		}
		if req.Options["temperature"] != 0.2 {
			t.Errorf("unexpected temperature: %v", req.Options["temperature"])
		}
		if req.Options["num_predict"] != float64(500) {
			t.Errorf("unexpected num_predict: %v", req.Options["num_predict"])
		}

		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: `{"event_type": "explosion"}`})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "qwen2.5:3b", testLogger())
	o.retryConfig = fastRetry()

	got, err := o.Generate(context.Background(), "extract the event", Options{
		MaxTokens:   500,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"event_type": "explosion"}` {
		t.Errorf("unexpected response: %q", got)
	}
}

func TestOllamaGenerateModelOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaGenerateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama3:8b" {
			t.Errorf("expected model override, got %s", req.Model)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "ok"})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "qwen2.5:3b", testLogger())
	o.retryConfig = fastRetry()

	if _, err := o.Generate(context.Background(), "p", Options{Model: "llama3:8b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOllamaGenerateErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Error: "model not found"})
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "missing", testLogger())
	o.retryConfig = fastRetry()

	if _, err := o.Generate(context.Background(), "p", Options{}); err == nil {
		t.Fatal("expected error for error response")
	}
}

func TestOllamaIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "qwen2.5:3b", testLogger())
	if !o.IsAvailable(context.Background()) {
		t.Error("expected available")
	}

	srv.Close()
	if o.IsAvailable(context.Background()) {
		t.Error("expected unavailable after server close")
	}
}
