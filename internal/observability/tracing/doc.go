// Package tracing provides OpenTelemetry tracing integration.
//
// The orchestrator opens a span per search and per pipeline phase; the HTTP
// middleware traces inbound requests and propagates W3C trace context.
// cmd/api installs the SDK tracer provider (no exporter by default).
package tracing
