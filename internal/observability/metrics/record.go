package metrics

import "time"

// RecordSearch records a finished search with its terminal status
// ("completed", "cancelled" or "failed") and duration.
func RecordSearch(status string, duration time.Duration) {
	SearchesTotal.WithLabelValues(status).Inc()
	SearchDuration.Observe(duration.Seconds())
}

// SetActiveSessions updates the session registry size gauge.
func SetActiveSessions(count int) {
	ActiveSessions.Set(float64(count))
}

// RecordArticlesScraped records the number of articles accepted from a source.
func RecordArticlesScraped(source string, count int) {
	ArticlesScrapedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordFetch records one HTTP fetch outcome. The outcome is "success" or a
// FetchError kind string (timeout, network, http_4xx, ...).
func RecordFetch(outcome string, duration time.Duration) {
	FetchRequestsTotal.WithLabelValues(outcome).Inc()
	FetchDuration.Observe(duration.Seconds())
}

// RecordFetchRetry records a fetch retry attempt.
func RecordFetchRetry() {
	FetchRetriesTotal.Inc()
}

// RecordLLMCall records one LLM generate call outcome for a provider.
// Status should be "success" or "failure".
func RecordLLMCall(provider string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	LLMCallsTotal.WithLabelValues(provider, status).Inc()
	LLMCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordArticleExtracted records an article that yielded an event candidate.
func RecordArticleExtracted() {
	ArticlesExtractedTotal.Inc()
}

// RecordArticleSkipped records an article dropped during extraction.
// Reason should describe why ("low_quality", "llm_error", "timeout",
// "no_event", "low_confidence").
func RecordArticleSkipped(reason string) {
	ArticlesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordEventMatched records an event that passed the relevance floor.
func RecordEventMatched() {
	EventsMatchedTotal.Inc()
}
