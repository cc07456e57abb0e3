package search

import (
	"errors"
	"log/slog"
	"net/http"

	"event-scraper/internal/domain/entity"
	"event-scraper/internal/handler/http/respond"
)

// CancelHandler requests cancellation of a running session. Cancelling a
// session that already finished reports already_terminal rather than
// failing.
type CancelHandler struct {
	Svc    Service
	Logger *slog.Logger
}

func (h CancelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.Svc.CancelSession(id)
	switch {
	case err == nil:
		h.Logger.Info("session cancellation requested", slog.String("session_id", id))
		respond.JSON(w, http.StatusOK, map[string]string{
			"status":     "cancelled",
			"session_id": id,
		})
	case errors.Is(err, entity.ErrAlreadyTerminal):
		respond.JSON(w, http.StatusOK, map[string]string{
			"status":     "already_terminal",
			"session_id": id,
		})
	case errors.Is(err, entity.ErrNotFound):
		respond.SafeError(w, http.StatusNotFound, err)
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
