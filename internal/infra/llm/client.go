// Package llm provides text generation clients for the event extraction
// pipeline. A local Ollama instance is the primary backend; Claude and
// OpenAI adapters serve as hosted fallbacks. All clients share the same
// circuit breaker and retry patterns.
package llm

import "context"

// Options controls a single generation call.
type Options struct {
	// Model overrides the client's default model when non-empty.
	Model string

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64
}

// Client generates text completions.
type Client interface {
	// Generate produces a completion for the prompt. Implementations apply
	// their own retry and circuit breaking; the context bounds the whole
	// call including retries.
	Generate(ctx context.Context, prompt string, opts Options) (string, error)

	// IsAvailable reports whether the backend is reachable. Used by the
	// health endpoint and the provider router; must return quickly.
	IsAvailable(ctx context.Context) bool

	// Name identifies the provider in logs and metrics.
	Name() string
}
