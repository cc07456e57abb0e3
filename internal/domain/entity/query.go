package entity

import (
	"strings"
	"time"
)

// maxPhraseLength bounds the query phrase to keep search URLs and prompts sane.
const maxPhraseLength = 500

// Query is a user search request. Phrase is required; the other fields narrow
// matching but are never appended to the scrape query.
type Query struct {
	Phrase    string
	Location  string
	EventType EventType
	DateFrom  *time.Time
	DateTo    *time.Time
}

// Validate checks the Query invariants. The phrase is trimmed in place.
func (q *Query) Validate() error {
	q.Phrase = strings.TrimSpace(q.Phrase)
	if q.Phrase == "" {
		return &ValidationError{Field: "phrase", Message: "query phrase is required"}
	}
	if len(q.Phrase) > maxPhraseLength {
		return &ValidationError{Field: "phrase", Message: "query phrase must not exceed 500 characters"}
	}
	if q.EventType != "" && !q.EventType.IsValid() {
		return &ValidationError{Field: "event_type", Message: "unknown event type: " + string(q.EventType)}
	}
	if q.DateFrom != nil && q.DateTo != nil && q.DateFrom.After(*q.DateTo) {
		return &ValidationError{Field: "date_from", Message: "date_from must not be after date_to"}
	}
	return nil
}

// queryDateLayouts are the accepted forms for query and event dates: plain
// dates and ISO-8601 timestamps with or without a zone.
var queryDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate parses a date string in YYYY-MM-DD or ISO-8601 form and coerces
// it to the start of its UTC day, so "2025-03-15" and "2025-03-15T00:00:00"
// produce the same instant.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range queryDateLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			lastErr = err
			continue
		}
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, lastErr
}
