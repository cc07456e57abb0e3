// Package slo tracks service level objectives for the search pipeline.
// Objectives are expressed against whole searches: how often a search
// finishes without a fatal error and how often it finishes inside the
// overall deadline the transport is expected to tolerate.
package slo

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets for the search pipeline.
const (
	// SuccessRatioSLO is the target fraction of searches that reach a
	// non-failed terminal state (completed or cancelled).
	SuccessRatioSLO = 0.99

	// DeadlineSLOSeconds is the overall per-search deadline the caller's
	// transport must tolerate (scrape budget + total LLM budget).
	DeadlineSLOSeconds = 600.0
)

var (
	// SLOSearchSuccessRatio tracks the running fraction of non-failed searches
	SLOSearchSuccessRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_search_success_ratio",
			Help: "Running fraction of searches reaching a non-failed terminal state, target: 0.99",
		},
	)

	// SLOSearchesOverDeadline counts searches that exceeded the overall deadline
	SLOSearchesOverDeadline = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slo_searches_over_deadline_total",
			Help: "Searches that ran longer than the overall deadline",
		},
	)
)

var (
	totalSearches  atomic.Int64
	failedSearches atomic.Int64
)

// RecordSearchOutcome records a terminal search and refreshes the success
// ratio gauge. failed means the session ended in the failed state.
func RecordSearchOutcome(failed bool, durationSeconds float64) {
	total := totalSearches.Add(1)
	failures := failedSearches.Load()
	if failed {
		failures = failedSearches.Add(1)
	}

	SLOSearchSuccessRatio.Set(float64(total-failures) / float64(total))

	if durationSeconds > DeadlineSLOSeconds {
		SLOSearchesOverDeadline.Inc()
	}
}
