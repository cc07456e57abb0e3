// Package resilience provides reliability and fault tolerance patterns for the application.
// It includes implementations of circuit breakers and retry logic to keep the
// pipeline healthy when external sites and LLM services misbehave.
//
// The package supports:
//   - Circuit breakers for external calls (web scraping, Ollama, Claude, OpenAI)
//   - Retry logic with exponential backoff and jitter, honoring Retry-After
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.WebScraperConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return fetchPage()
//	})
//
//	retryConfig := retry.WebScraperConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return performFetch()
//	})
package resilience
