package search

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"event-scraper/internal/domain/entity"
)

// Status is the lifecycle state of a session. Terminal states are absorbing.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is absorbing.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// Counters is a snapshot of a session's monotonic progress counters.
type Counters struct {
	ArticlesScraped   int     `json:"articles_scraped"`
	ArticlesExtracted int     `json:"articles_extracted"`
	EventsMatched     int     `json:"events_matched"`
	ProcessingSeconds float64 `json:"processing_seconds"`
}

// Session is the server-side handle for one search. The cancellation flag
// and counters use atomics so the orchestrator's workers can poll and bump
// them without locking; status and the event list are mutex-guarded.
type Session struct {
	ID        string
	Query     entity.Query
	CreatedAt time.Time

	cancelled  atomic.Bool
	lastActive atomic.Int64

	articlesScraped   atomic.Int64
	articlesExtracted atomic.Int64
	eventsMatched     atomic.Int64

	mu                sync.Mutex
	status            Status
	events            []*entity.EventData
	processingSeconds float64
}

func newSession(query entity.Query) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Query:     query,
		CreatedAt: time.Now().UTC(),
		status:    StatusRunning,
	}
	s.touch()
	return s
}

// Cancel sets the cancellation flag. The pipeline observes it at the next
// safe point; the status transition happens when the orchestrator yields.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
	s.touch()
}

// Cancelled reports whether cancellation has been requested.
func (s *Session) Cancelled() bool {
	return s.cancelled.Load()
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// finish moves the session into a terminal state exactly once and records
// the total processing time. Later calls are no-ops.
func (s *Session) finish(status Status, processingSeconds float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Terminal() {
		return false
	}
	s.status = status
	s.processingSeconds = processingSeconds
	s.touch()
	return true
}

// AddEvent appends a matched event to the session.
func (s *Session) AddEvent(event *entity.EventData) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	s.touch()
}

// Events returns a copy of the matched events collected so far.
func (s *Session) Events() []*entity.EventData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.EventData, len(s.events))
	copy(out, s.events)
	return out
}

// EventCount returns the number of matched events collected so far.
func (s *Session) EventCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *Session) addScraped(n int) { s.articlesScraped.Add(int64(n)); s.touch() }
func (s *Session) incExtracted()    { s.articlesExtracted.Add(1); s.touch() }
func (s *Session) incMatched()      { s.eventsMatched.Add(1); s.touch() }

// Counters returns a snapshot of the progress counters.
func (s *Session) Counters() Counters {
	s.mu.Lock()
	seconds := s.processingSeconds
	s.mu.Unlock()
	return Counters{
		ArticlesScraped:   int(s.articlesScraped.Load()),
		ArticlesExtracted: int(s.articlesExtracted.Load()),
		EventsMatched:     int(s.eventsMatched.Load()),
		ProcessingSeconds: seconds,
	}
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// View is the read model returned on session lookup.
type View struct {
	SessionID   string              `json:"session_id"`
	Status      Status              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	Counters    Counters            `json:"counters"`
	TotalEvents int                 `json:"total_events"`
	Events      []*entity.EventData `json:"events"`
}

// Snapshot captures the session state for transport.
func (s *Session) Snapshot() View {
	events := s.Events()
	return View{
		SessionID:   s.ID,
		Status:      s.Status(),
		CreatedAt:   s.CreatedAt,
		Counters:    s.Counters(),
		TotalEvents: len(events),
		Events:      events,
	}
}
