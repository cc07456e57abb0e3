// Package entity defines the core domain entities and validation logic for the
// event search pipeline. It contains the fundamental value types such as
// EventData, ArticleContent, Query and SourceConfig, along with the controlled
// vocabularies and their fuzzy normalization rules.
package entity

import (
	"sort"
	"strings"
)

// EventType is the controlled vocabulary for the kind of event an article
// describes. Arbitrary model output is folded into this set by ParseEventType.
type EventType string

// Event type members, grouped by category.
const (
	// Violence / security
	EventTypeProtest           EventType = "protest"
	EventTypeDemonstration     EventType = "demonstration"
	EventTypeAttack            EventType = "attack"
	EventTypeExplosion         EventType = "explosion"
	EventTypeBombing           EventType = "bombing"
	EventTypeShooting          EventType = "shooting"
	EventTypeTheft             EventType = "theft"
	EventTypeKidnapping        EventType = "kidnapping"
	EventTypeTerroristActivity EventType = "terrorist_activity"
	EventTypeCivilUnrest       EventType = "civil_unrest"

	// Cyber
	EventTypeCyberAttack   EventType = "cyber_attack"
	EventTypeCyberIncident EventType = "cyber_incident"
	EventTypeDataBreach    EventType = "data_breach"

	// Meetings
	EventTypeConference EventType = "conference"
	EventTypeMeeting    EventType = "meeting"
	EventTypeSummit     EventType = "summit"

	// Disasters
	EventTypeAccident        EventType = "accident"
	EventTypeNaturalDisaster EventType = "natural_disaster"

	// Political / military
	EventTypeElection          EventType = "election"
	EventTypePoliticalEvent    EventType = "political_event"
	EventTypeMilitaryOperation EventType = "military_operation"

	// Crisis
	EventTypeHumanitarianCrisis EventType = "humanitarian_crisis"

	// Fallback
	EventTypeOther EventType = "other"
)

// AllEventTypes returns every member of the vocabulary in a stable order.
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeProtest,
		EventTypeDemonstration,
		EventTypeAttack,
		EventTypeExplosion,
		EventTypeBombing,
		EventTypeShooting,
		EventTypeTheft,
		EventTypeKidnapping,
		EventTypeTerroristActivity,
		EventTypeCivilUnrest,
		EventTypeCyberAttack,
		EventTypeCyberIncident,
		EventTypeDataBreach,
		EventTypeConference,
		EventTypeMeeting,
		EventTypeSummit,
		EventTypeAccident,
		EventTypeNaturalDisaster,
		EventTypeElection,
		EventTypePoliticalEvent,
		EventTypeMilitaryOperation,
		EventTypeHumanitarianCrisis,
		EventTypeOther,
	}
}

// String returns the wire representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// IsValid reports whether the value is an exact member of the vocabulary.
func (t EventType) IsValid() bool {
	for _, m := range AllEventTypes() {
		if t == m {
			return true
		}
	}
	return false
}

// IsViolent reports whether the event type implies physical violence.
// Used by the extractor to cross-check model labels against article text.
func (t EventType) IsViolent() bool {
	switch t {
	case EventTypeAttack, EventTypeExplosion, EventTypeBombing,
		EventTypeShooting, EventTypeTerroristActivity, EventTypeMilitaryOperation:
		return true
	}
	return false
}

// ParseEventType folds an arbitrary string into the EventType vocabulary.
//
// Matching proceeds in stages and stops at the first hit:
//  1. Exact case-insensitive match after trimming and space-to-underscore
//     normalization.
//  2. Keyword shortcuts for common model phrasings (diplomatic visits map to
//     meeting, bilateral talks to summit).
//  3. Substring containment in either direction; the member with the longest
//     matched name wins, ties broken alphabetically.
//  4. Word overlap between the raw string and the member's name parts.
//
// Anything unmatched becomes EventTypeOther. The function is idempotent:
// parsing the result of a previous parse returns the same member.
func ParseEventType(raw string) EventType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "" {
		return EventTypeOther
	}

	for _, m := range AllEventTypes() {
		if normalized == string(m) {
			return m
		}
	}

	// Shortcuts for phrasings the model produces often enough to special-case.
	switch {
	case strings.Contains(normalized, "visit"), strings.Contains(normalized, "diplomatic"):
		return EventTypeMeeting
	case strings.Contains(normalized, "summit"), strings.Contains(normalized, "bilateral"):
		return EventTypeSummit
	case strings.Contains(normalized, "conference"):
		return EventTypeConference
	}

	if m, ok := bestSubstringMatch(normalized, eventTypeNames()); ok {
		return EventType(m)
	}
	if m, ok := bestWordOverlapMatch(normalized, eventTypeNames()); ok {
		return EventType(m)
	}
	return EventTypeOther
}

func eventTypeNames() []string {
	members := AllEventTypes()
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = string(m)
	}
	return names
}

// bestSubstringMatch finds the vocabulary member sharing the longest substring
// relationship with raw, in either direction. Ties go to the alphabetically
// smaller member.
func bestSubstringMatch(raw string, members []string) (string, bool) {
	best := ""
	bestLen := 0
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	for _, name := range sorted {
		matchLen := 0
		switch {
		case strings.Contains(raw, name):
			matchLen = len(name)
		case strings.Contains(name, raw):
			matchLen = len(raw)
		}
		if matchLen > bestLen {
			best = name
			bestLen = matchLen
		}
	}
	return best, bestLen > 0
}

// bestWordOverlapMatch matches when any underscore-separated word of the raw
// string equals any word of a member's name. The member with the most shared
// words wins, ties alphabetical.
func bestWordOverlapMatch(raw string, members []string) (string, bool) {
	rawWords := splitWords(raw)
	if len(rawWords) == 0 {
		return "", false
	}
	best := ""
	bestCount := 0
	sorted := append([]string(nil), members...)
	sort.Strings(sorted)
	for _, name := range sorted {
		count := 0
		for w := range splitWords(name) {
			if rawWords[w] {
				count++
			}
		}
		if count > bestCount {
			best = name
			bestCount = count
		}
	}
	return best, bestCount > 0
}

func splitWords(s string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == ' '
	}) {
		if w != "" {
			words[w] = true
		}
	}
	return words
}
