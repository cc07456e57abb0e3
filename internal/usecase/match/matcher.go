// Package match scores extracted events against the user's query and ranks
// the survivors. Scoring is a weighted sum over text, location, date, and
// event-type similarity, discounted by the extraction confidence.
package match

import (
	"sort"
	"strings"
	"time"

	"event-scraper/internal/domain/entity"
)

// Default component weights. They sum to 1.0; config may override them.
const (
	DefaultTextWeight     = 0.40
	DefaultLocationWeight = 0.25
	DefaultDateWeight     = 0.20
	DefaultTypeWeight     = 0.15
)

// MinScore is the relevance floor: events scoring below it are discarded.
const MinScore = 0.30

// Scoring constants for the individual components.
const (
	jaccardShare       = 0.7
	lcsShare           = 0.3
	substringLocScore  = 0.6
	neutralDateScore   = 0.5
	neutralTypeScore   = 0.5
	dateFalloffDays    = 30.0
	minKeywordLength   = 3
)

// stopWords are common English function words excluded from keyword sets.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "were": true, "been": true, "be": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "should": true, "could": true, "may": true,
	"might": true, "can": true, "this": true, "that": true, "these": true,
	"those": true, "it": true, "its": true, "they": true, "them": true,
	"their": true,
}

// Weights configures the component weighting of the relevance score.
type Weights struct {
	Text     float64
	Location float64
	Date     float64
	Type     float64
}

// DefaultWeights returns the standard weighting.
func DefaultWeights() Weights {
	return Weights{
		Text:     DefaultTextWeight,
		Location: DefaultLocationWeight,
		Date:     DefaultDateWeight,
		Type:     DefaultTypeWeight,
	}
}

// Matcher scores and ranks events.
type Matcher struct {
	weights  Weights
	minScore float64
}

// New creates a Matcher. minScore ≤ 0 selects the default floor.
func New(weights Weights, minScore float64) *Matcher {
	if minScore <= 0 {
		minScore = MinScore
	}
	return &Matcher{weights: weights, minScore: minScore}
}

// Score computes the relevance of one event for the query, already
// discounted by the event's confidence. The result is in [0, 1].
func (m *Matcher) Score(query entity.Query, event *entity.EventData) float64 {
	score := m.weights.Text*textScore(query.Phrase, event) +
		m.weights.Location*locationScore(query.Location, event.Location) +
		m.weights.Date*dateScore(query, event) +
		m.weights.Type*typeScore(query.EventType, event.EventType)

	return entity.ClampUnit(score * entity.ClampUnit(event.Confidence))
}

// MatchEvents scores every event, drops those under the floor, and returns
// the survivors sorted by relevance descending. Ties break by event date
// descending, then by input order. RelevanceScore is set on returned events.
func (m *Matcher) MatchEvents(query entity.Query, events []*entity.EventData) []*entity.EventData {
	matched := make([]*entity.EventData, 0, len(events))
	for _, event := range events {
		score := m.Score(query, event)
		if score < m.minScore {
			continue
		}
		event.RelevanceScore = score
		matched = append(matched, event)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].RelevanceScore != matched[j].RelevanceScore {
			return matched[i].RelevanceScore > matched[j].RelevanceScore
		}
		di, dj := matched[i].MatchDate(), matched[j].MatchDate()
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})

	return matched
}

// textScore combines Jaccard keyword overlap with a longest-common-
// subsequence ratio between the phrase and the title+summary text.
func textScore(phrase string, event *entity.EventData) float64 {
	eventText := event.Title + " " + event.Summary

	queryWords := keywords(phrase)
	eventWords := keywords(eventText)

	j := jaccard(queryWords, eventWords)
	s := lcsRatio(strings.ToLower(phrase), strings.ToLower(eventText))

	return jaccardShare*j + lcsShare*s
}

// keywords splits text into lowercased words, dropping stop words and
// words shorter than three characters.
func keywords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if len(word) < minKeywordLength || stopWords[word] {
			continue
		}
		out[word] = true
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if b[w] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// lcsRatio is the longest common subsequence length over the longer
// string's length. Inputs are capped to keep the DP table small.
func lcsRatio(a, b string) float64 {
	const maxLen = 512
	if len(a) > maxLen {
		a = a[:maxLen]
	}
	if len(b) > maxLen {
		b = b[:maxLen]
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(prev[len(b)]) / float64(longer)
}

// locationScore is the best match across the event's location fields:
// exact equality scores 1.0, substring containment either way 0.6.
func locationScore(queryLocation string, loc entity.Location) float64 {
	queryLocation = strings.ToLower(strings.TrimSpace(queryLocation))
	if queryLocation == "" {
		return 0
	}

	best := 0.0
	for _, field := range loc.Fields() {
		field = strings.ToLower(strings.TrimSpace(field))
		switch {
		case field == queryLocation:
			return 1.0
		case strings.Contains(field, queryLocation) || strings.Contains(queryLocation, field):
			if substringLocScore > best {
				best = substringLocScore
			}
		}
	}
	return best
}

// dateScore rates how close the event date sits to the query's range.
// Without a range every event is neutral; without an event date the event
// cannot be placed and scores zero.
func dateScore(query entity.Query, event *entity.EventData) float64 {
	if query.DateFrom == nil && query.DateTo == nil {
		return neutralDateScore
	}

	date := event.MatchDate()
	if date == nil {
		return 0
	}

	if (query.DateFrom == nil || !date.Before(*query.DateFrom)) &&
		(query.DateTo == nil || !date.After(*query.DateTo)) {
		return 1.0
	}

	// Outside the range: linear falloff over 30 days from the nearer bound
	var distance time.Duration
	if query.DateFrom != nil && date.Before(*query.DateFrom) {
		distance = query.DateFrom.Sub(*date)
	} else if query.DateTo != nil {
		distance = date.Sub(*query.DateTo)
	}

	days := distance.Hours() / 24
	score := 1.0 - days/dateFalloffDays
	if score < 0 {
		return 0
	}
	return score
}

func typeScore(queryType entity.EventType, eventType entity.EventType) float64 {
	if queryType == "" {
		return neutralTypeScore
	}
	if queryType == eventType {
		return 1.0
	}
	return 0
}

// FilterByDateRange returns the events whose match date lies within
// [from, to]. Nil bounds are open; events without a date are excluded when
// any bound is set.
func FilterByDateRange(events []*entity.EventData, from, to *time.Time) []*entity.EventData {
	if from == nil && to == nil {
		return events
	}
	out := make([]*entity.EventData, 0, len(events))
	for _, event := range events {
		date := event.MatchDate()
		if date == nil {
			continue
		}
		if from != nil && date.Before(*from) {
			continue
		}
		if to != nil && date.After(*to) {
			continue
		}
		out = append(out, event)
	}
	return out
}

// FilterByLocation returns events with any location field matching the
// given location exactly or by substring, case-insensitively.
func FilterByLocation(events []*entity.EventData, location string) []*entity.EventData {
	location = strings.TrimSpace(location)
	if location == "" {
		return events
	}
	out := make([]*entity.EventData, 0, len(events))
	for _, event := range events {
		if locationScore(location, event.Location) > 0 {
			out = append(out, event)
		}
	}
	return out
}

// FilterByEventType returns events of exactly the given type.
func FilterByEventType(events []*entity.EventData, eventType entity.EventType) []*entity.EventData {
	if eventType == "" {
		return events
	}
	out := make([]*entity.EventData, 0, len(events))
	for _, event := range events {
		if event.EventType == eventType {
			out = append(out, event)
		}
	}
	return out
}
