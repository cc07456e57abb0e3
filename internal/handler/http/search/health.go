package search

import (
	"context"
	"net/http"
	"time"

	"event-scraper/internal/handler/http/respond"
)

// AvailabilityProber reports whether the configured LLM provider is
// reachable.
type AvailabilityProber interface {
	IsAvailable(ctx context.Context) bool
	Name() string
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

// CheckStatus is the state of one health check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler reports service health. An unreachable LLM degrades the
// status but keeps the endpoint at 200: scraping and session lookup still
// work without it.
type HealthHandler struct {
	Prober AvailabilityProber
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	status := "healthy"

	if h.Prober != nil {
		if h.Prober.IsAvailable(ctx) {
			checks["llm"] = CheckStatus{Status: "healthy", Message: h.Prober.Name()}
		} else {
			checks["llm"] = CheckStatus{Status: "unhealthy", Message: h.Prober.Name() + " unreachable"}
			status = "degraded"
		}
	} else {
		checks["llm"] = CheckStatus{Status: "unhealthy", Message: "not configured"}
		status = "degraded"
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
