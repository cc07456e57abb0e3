package search

import (
	"log/slog"
	"net/http"
)

// Register wires the search endpoints onto the mux.
func Register(mux *http.ServeMux, svc Service, prober AvailabilityProber, logger *slog.Logger) {
	mux.Handle("POST /api/v1/search/stream", StreamHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /api/v1/search/session/{id}", GetHandler{Svc: svc})
	mux.Handle("POST /api/v1/search/cancel/{id}", CancelHandler{Svc: svc, Logger: logger})
	mux.Handle("GET /healthz", HealthHandler{Prober: prober})
}
