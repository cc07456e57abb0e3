// Package search exposes the search pipeline over HTTP: an SSE stream for
// starting searches, session lookup and cancellation endpoints, and a
// health probe.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"event-scraper/internal/domain/entity"
	"event-scraper/internal/handler/http/respond"
	searchUC "event-scraper/internal/usecase/search"
)

// Service is the slice of the search orchestrator the transport needs.
type Service interface {
	StartSearch(ctx context.Context, query entity.Query) (string, <-chan searchUC.Frame, error)
	GetSession(id string) (*searchUC.Session, error)
	CancelSession(id string) error
}

// StreamHandler starts a search and relays its frames as server-sent
// events. The request context is handed to the orchestrator, so a client
// disconnect cancels the search.
type StreamHandler struct {
	Svc    Service
	Logger *slog.Logger
}

func (h StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	query, err := req.toQuery()
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respond.SafeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}

	sessionID, frames, err := h.Svc.StartSearch(r.Context(), query)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger := h.Logger.With(slog.String("session_id", sessionID))
	for frame := range frames {
		data, err := json.Marshal(frame)
		if err != nil {
			logger.Error("failed to marshal frame",
				slog.String("frame_type", frame.Type()),
				slog.Any("error", err))
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame.Type(), data); err != nil {
			// Client went away; the orchestrator sees it via r.Context()
			logger.Debug("stream write failed, client disconnected")
			return
		}
		flusher.Flush()
	}
}
