package search

import "event-scraper/internal/domain/entity"

// Frame type discriminators carried in the event_type field of every frame.
const (
	FrameSession   = "session"
	FrameProgress  = "progress"
	FrameEvent     = "event"
	FrameComplete  = "complete"
	FrameCancelled = "cancelled"
	FrameError     = "error"
)

// Frame is one message on a search stream. Every frame serializes to a JSON
// object whose event_type field identifies the concrete shape.
type Frame interface {
	Type() string
}

// SessionFrame is the first frame of every stream and carries the session id
// the client needs for cancellation and later retrieval.
type SessionFrame struct {
	EventType string `json:"event_type"`
	SessionID string `json:"session_id"`
}

// NewSessionFrame builds a session frame.
func NewSessionFrame(sessionID string) SessionFrame {
	return SessionFrame{EventType: FrameSession, SessionID: sessionID}
}

// Type returns the frame discriminator.
func (f SessionFrame) Type() string { return f.EventType }

// ProgressFrame carries a counters snapshot. Counters are monotonic across
// the frames of one session.
type ProgressFrame struct {
	EventType         string `json:"event_type"`
	Message           string `json:"message"`
	ArticlesScraped   int    `json:"articles_scraped"`
	ArticlesExtracted int    `json:"articles_extracted"`
	EventsMatched     int    `json:"events_matched"`
	SourcesDone       int    `json:"sources_done"`
	SourcesTotal      int    `json:"sources_total"`
}

// Type returns the frame discriminator.
func (f ProgressFrame) Type() string { return f.EventType }

// EventFrame carries one matched event.
type EventFrame struct {
	EventType string            `json:"event_type"`
	Event     *entity.EventData `json:"event"`
}

// NewEventFrame builds an event frame.
func NewEventFrame(event *entity.EventData) EventFrame {
	return EventFrame{EventType: FrameEvent, Event: event}
}

// Type returns the frame discriminator.
func (f EventFrame) Type() string { return f.EventType }

// CompleteFrame terminates a successfully finished stream.
type CompleteFrame struct {
	EventType         string  `json:"event_type"`
	Message           string  `json:"message"`
	TotalEvents       int     `json:"total_events"`
	ArticlesProcessed int     `json:"articles_processed"`
	ProcessingTime    float64 `json:"processing_time"`
}

// Type returns the frame discriminator.
func (f CompleteFrame) Type() string { return f.EventType }

// CancelledFrame terminates a cancelled stream, reporting how many events
// had been produced before the cancellation took effect.
type CancelledFrame struct {
	EventType   string `json:"event_type"`
	Message     string `json:"message"`
	TotalEvents int    `json:"total_events"`
}

// Type returns the frame discriminator.
func (f CancelledFrame) Type() string { return f.EventType }

// ErrorFrame terminates a stream after an unexpected failure.
type ErrorFrame struct {
	EventType   string `json:"event_type"`
	Message     string `json:"message"`
	Recoverable bool   `json:"recoverable"`
}

// NewErrorFrame builds an error frame.
func NewErrorFrame(message string, recoverable bool) ErrorFrame {
	return ErrorFrame{EventType: FrameError, Message: message, Recoverable: recoverable}
}

// Type returns the frame discriminator.
func (f ErrorFrame) Type() string { return f.EventType }
