package search

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"event-scraper/internal/domain/entity"
	"event-scraper/internal/observability/metrics"
)

// Registry is the process-wide session store. Reads dominate; writes hold
// the lock only for map mutation, never across I/O.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create inserts a fresh running session for the query.
func (r *Registry) Create(query entity.Query) *Session {
	session := newSession(query)
	r.mu.Lock()
	r.sessions[session.ID] = session
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.SetActiveSessions(count)
	return session
}

// Get returns the session with the given id, or entity.ErrNotFound.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, entity.ErrNotFound
	}
	return session, nil
}

// MarkCancelled sets the cancellation flag on a running session. It returns
// entity.ErrNotFound for unknown ids and entity.ErrAlreadyTerminal when the
// session has already finished; a repeated cancellation of a still-running
// session is a no-op.
func (r *Registry) MarkCancelled(id string) error {
	session, err := r.Get(id)
	if err != nil {
		return err
	}
	if session.Status().Terminal() {
		return entity.ErrAlreadyTerminal
	}
	session.Cancel()
	return nil
}

// Len returns the number of stored sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictExpired removes sessions idle for longer than ttl and returns how
// many were removed. Expiry is computed on a snapshot so the write lock is
// held only for the deletions themselves.
func (r *Registry) EvictExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	r.mu.RLock()
	expired := make([]string, 0)
	for id, session := range r.sessions {
		if session.idleSince().Before(cutoff) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	if len(expired) == 0 {
		return 0
	}

	removed := 0
	r.mu.Lock()
	for _, id := range expired {
		if session, ok := r.sessions[id]; ok && session.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.SetActiveSessions(count)
	return removed
}

// StartCleaner schedules hourly eviction of sessions idle longer than ttl.
// The returned cron is already started; the caller stops it on shutdown.
func (r *Registry) StartCleaner(ttl time.Duration, logger *slog.Logger) *cron.Cron {
	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if removed := r.EvictExpired(ttl); removed > 0 {
			logger.Info("evicted expired sessions",
				slog.Int("removed", removed),
				slog.Duration("ttl", ttl))
		}
	}); err != nil {
		logger.Error("failed to schedule session cleaner", slog.Any("error", err))
	}
	c.Start()
	return c
}
