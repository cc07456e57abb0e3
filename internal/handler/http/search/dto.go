package search

import (
	"event-scraper/internal/domain/entity"
)

// searchRequest is the POST body for starting a search. Dates accept plain
// YYYY-MM-DD or ISO-8601 timestamps.
type searchRequest struct {
	Phrase    string `json:"phrase"`
	Location  string `json:"location"`
	EventType string `json:"event_type"`
	DateFrom  string `json:"date_from"`
	DateTo    string `json:"date_to"`
}

func (r searchRequest) toQuery() (entity.Query, error) {
	query := entity.Query{
		Phrase:   r.Phrase,
		Location: r.Location,
	}
	if r.EventType != "" {
		query.EventType = entity.ParseEventType(r.EventType)
	}
	if r.DateFrom != "" {
		t, err := entity.ParseDate(r.DateFrom)
		if err != nil {
			return entity.Query{}, &entity.ValidationError{Field: "date_from", Message: "invalid date: " + r.DateFrom}
		}
		query.DateFrom = &t
	}
	if r.DateTo != "" {
		t, err := entity.ParseDate(r.DateTo)
		if err != nil {
			return entity.Query{}, &entity.ValidationError{Field: "date_to", Message: "invalid date: " + r.DateTo}
		}
		query.DateTo = &t
	}
	return query, nil
}
