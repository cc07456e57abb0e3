package search

import (
	"errors"
	"net/http"

	"event-scraper/internal/domain/entity"
	"event-scraper/internal/handler/http/respond"
)

// GetHandler returns a snapshot of one session: its status, counters, and
// the events matched so far.
type GetHandler struct {
	Svc Service
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, err := h.Svc.GetSession(r.PathValue("id"))
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, session.Snapshot())
}
