package entity

import "time"

// Location describes where an event took place. All fields are optional;
// matching treats them as a set of candidate strings.
type Location struct {
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
	Venue   string `json:"venue,omitempty"`
}

// IsZero reports whether no location field is set.
func (l Location) IsZero() bool {
	return l.City == "" && l.Region == "" && l.Country == "" && l.Venue == ""
}

// Fields returns the non-empty location fields for matching.
func (l Location) Fields() []string {
	var out []string
	for _, f := range []string{l.City, l.Region, l.Country, l.Venue} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Casualties carries killed/injured counts. A nil pointer means the article
// did not state a figure, which is distinct from an explicit zero.
type Casualties struct {
	Killed  *int `json:"killed,omitempty"`
	Injured *int `json:"injured,omitempty"`
}

// EventData is the normalized event record extracted from one article.
// Required fields are EventType, Title, Summary and Confidence; everything
// else is best-effort output of the extraction step.
type EventData struct {
	EventType    EventType       `json:"event_type"`
	EventSubType string          `json:"event_sub_type,omitempty"`
	Title        string          `json:"title"`
	Summary      string          `json:"summary"`
	Confidence   float64         `json:"confidence"`
	Perpetrator  string          `json:"perpetrator,omitempty"`
	PerpType     PerpetratorType `json:"perpetrator_type,omitempty"`

	Location      Location    `json:"location"`
	Casualties    *Casualties `json:"casualties,omitempty"`
	Participants  []string    `json:"participants,omitempty"`
	Organizations []string    `json:"organizations,omitempty"`

	EventDate            *time.Time `json:"event_date,omitempty"`
	EventTime            string     `json:"event_time,omitempty"`
	SourceName           string     `json:"source_name,omitempty"`
	SourceURL            string     `json:"source_url,omitempty"`
	ArticlePublishedDate *time.Time `json:"article_published_date,omitempty"`
	Impact               string     `json:"impact,omitempty"`
	FullContent          string     `json:"full_content,omitempty"`

	CollectionTimestamp time.Time `json:"collection_timestamp"`
	RelevanceScore      float64   `json:"relevance_score"`
}

// MatchDate returns the date used for relevance matching: the event date when
// present, else the article's published date, else nil.
func (e *EventData) MatchDate() *time.Time {
	if e.EventDate != nil {
		return e.EventDate
	}
	return e.ArticlePublishedDate
}

// ClampConfidence forces Confidence into the unit interval.
func (e *EventData) ClampConfidence() {
	e.Confidence = ClampUnit(e.Confidence)
}

// ClampUnit clamps v to [0, 1].
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
