package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// Router dispatches generation calls to a primary provider and falls back
// to a secondary one when the primary is unreachable or errors out.
type Router struct {
	primary  Client
	fallback Client
	logger   *slog.Logger
}

// NewRouter creates a Router. fallback may be nil, in which case primary
// failures are returned as-is.
func NewRouter(primary, fallback Client, logger *slog.Logger) *Router {
	return &Router{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Generate tries the primary provider first. When the primary is known to be
// unavailable it goes straight to the fallback rather than burning the
// article's time budget on doomed retries.
func (r *Router) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if r.fallback != nil && !r.primary.IsAvailable(ctx) {
		r.logger.Warn("primary llm unavailable, using fallback",
			slog.String("primary", r.primary.Name()),
			slog.String("fallback", r.fallback.Name()))
		return r.fallback.Generate(ctx, prompt, opts)
	}

	result, err := r.primary.Generate(ctx, prompt, opts)
	if err == nil {
		return result, nil
	}
	if r.fallback == nil || ctx.Err() != nil {
		return "", err
	}

	r.logger.Warn("primary llm failed, trying fallback",
		slog.String("primary", r.primary.Name()),
		slog.String("fallback", r.fallback.Name()),
		slog.Any("error", err))

	result, fbErr := r.fallback.Generate(ctx, prompt, opts)
	if fbErr != nil {
		return "", fmt.Errorf("fallback %s also failed: %w (primary: %v)",
			r.fallback.Name(), fbErr, err)
	}
	return result, nil
}

// IsAvailable reports whether any configured provider is reachable.
func (r *Router) IsAvailable(ctx context.Context) bool {
	if r.primary.IsAvailable(ctx) {
		return true
	}
	return r.fallback != nil && r.fallback.IsAvailable(ctx)
}

// Name identifies the router by its primary provider.
func (r *Router) Name() string {
	return r.primary.Name()
}
