package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the event-scraper application.
var tracer = otel.Tracer("event-scraper")

// GetTracer returns the global tracer for creating spans.
// This tracer can be used throughout the application to create new spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "search")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// StartSpan starts a new span on the global tracer. Convenience wrapper for
// pipeline phases that do not need span options.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}
