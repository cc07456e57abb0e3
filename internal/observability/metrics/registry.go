// Package metrics provides centralized Prometheus metrics for the search pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search metrics track whole-search outcomes and session load.
var (
	// SearchesTotal counts searches by terminal status (completed, cancelled, failed)
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searches_total",
			Help: "Total number of searches by terminal status",
		},
		[]string{"status"},
	)

	// SearchDuration measures end-to-end search duration in seconds
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "End-to-end search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// ActiveSessions tracks the number of sessions in the registry
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_sessions_active",
			Help: "Number of sessions currently held in the registry",
		},
	)
)

// Scraping metrics track per-source article yield and fetch behavior.
var (
	// ArticlesScrapedTotal counts articles accepted from each source
	ArticlesScrapedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_scraped_total",
			Help: "Total number of articles scraped per source",
		},
		[]string{"source"},
	)

	// FetchRequestsTotal counts HTTP fetches by outcome kind
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_requests_total",
			Help: "Total number of HTTP fetch attempts by outcome",
		},
		[]string{"outcome"},
	)

	// FetchDuration measures fetch duration in seconds
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "HTTP fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// FetchRetriesTotal counts fetch retries
	FetchRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetch_retries_total",
			Help: "Total number of HTTP fetch retries",
		},
	)
)

// Extraction metrics track LLM usage and yield.
var (
	// LLMCallsTotal counts LLM generate calls by provider and status
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_calls_total",
			Help: "Total number of LLM generate calls",
		},
		[]string{"provider", "status"},
	)

	// LLMCallDuration measures LLM call duration per provider
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM generate call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"provider"},
	)

	// ArticlesExtractedTotal counts articles that produced an event candidate
	ArticlesExtractedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_extracted_total",
			Help: "Total number of articles that yielded an event candidate",
		},
	)

	// ArticlesSkippedTotal counts articles dropped before or during extraction
	ArticlesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_skipped_total",
			Help: "Total number of articles skipped during extraction",
		},
		[]string{"reason"},
	)

	// EventsMatchedTotal counts events that survived the relevance floor
	EventsMatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_matched_total",
			Help: "Total number of events that passed relevance matching",
		},
	)
)
