// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - Search lifecycle metrics (duration, terminal status, active sessions)
//   - Scraping metrics (articles per source, fetch outcomes, retries)
//   - LLM extraction metrics (call duration, failures, skip reasons)
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "event-scraper/internal/observability/metrics"
//
//	func scrapeSource(source string) {
//	    // ... scrape articles ...
//	    metrics.RecordArticlesScraped(source, len(articles))
//	}
package metrics
