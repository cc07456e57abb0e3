// Package ner extracts rough named-entity hints from article text. The
// hints are fed into the extraction prompt to steer the model toward names
// it might otherwise miss; precision matters less than recall here, so a
// lightweight heuristic pass beats pulling in a full NLP stack.
package ner

import (
	"regexp"
	"strings"
	"unicode"

	"event-scraper/internal/domain/entity"
)

const maxPerType = 10

// orgKeywords mark a capitalized span as an organization rather than a person.
var orgKeywords = []string{
	"ministry", "department", "agency", "police", "army", "forces",
	"government", "council", "committee", "commission", "organization",
	"organisation", "university", "institute", "company", "corporation",
	"group", "party", "union", "association", "bank", "news", "times",
	"front", "brigade", "battalion", "authority", "bureau", "office",
}

// sentenceStarters are common words that begin sentences capitalized without
// being names.
var sentenceStarters = map[string]bool{
	"The": true, "A": true, "An": true, "In": true, "On": true, "At": true,
	"It": true, "He": true, "She": true, "They": true, "We": true, "This": true,
	"That": true, "There": true, "After": true, "Before": true, "When": true,
	"While": true, "According": true, "Officials": true, "Police": true,
	"However": true, "Meanwhile": true, "But": true, "And": true, "As": true,
	"Several": true, "Many": true, "Some": true, "Witnesses": true,
	"Authorities": true, "Reports": true, "Local": true, "Earlier": true,
}

// locationHints mark a span as a place.
var locationHints = []string{
	"city", "province", "state", "region", "district", "county",
	"village", "town", "republic",
}

var (
	datePattern = regexp.MustCompile(`\b(?:\d{1,2}\s+)?(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:,?\s+\d{4})?\b|\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{4}\b|\b\d{4}-\d{2}-\d{2}\b`)

	// capitalizedSpan matches runs of capitalized words, allowing internal
	// connectors like "of" and "al-" style prefixes.
	capitalizedSpan = regexp.MustCompile(`\b[A-Z][a-zA-Z'-]+(?:\s+(?:of|the|al|bin|van|de|el)\s+[A-Z][a-zA-Z'-]+|\s+[A-Z][a-zA-Z'-]+)*\b`)
)

// Hinter produces entity hints from raw article text.
type Hinter struct{}

// NewHinter creates a Hinter.
func NewHinter() *Hinter {
	return &Hinter{}
}

// Extract scans the title and content for likely persons, organizations,
// locations, and dates. Each category is capped to keep prompts small.
func (h *Hinter) Extract(title, content string) entity.Entities {
	var ents entity.Entities

	text := title + ". " + content
	for _, m := range datePattern.FindAllString(text, -1) {
		if len(ents.Dates) >= maxPerType {
			break
		}
		ents.AddDate(m)
	}

	for _, span := range capitalizedSpan.FindAllString(text, -1) {
		span = strings.TrimSpace(span)
		if span == "" || sentenceStarters[span] {
			continue
		}
		// Single sentence-starter word leading a span: drop it
		if first, rest, ok := strings.Cut(span, " "); ok && sentenceStarters[first] {
			span = rest
		}
		if !startsCapitalized(span) {
			continue
		}

		switch classify(span) {
		case "organization":
			if len(ents.Organizations) < maxPerType {
				ents.AddOrganization(span)
			}
		case "location":
			if len(ents.Locations) < maxPerType {
				ents.AddLocation(span)
			}
		default:
			// Persons are usually two or more capitalized words; single
			// words are too noisy to be useful hints.
			if strings.Contains(span, " ") && len(ents.Persons) < maxPerType {
				ents.AddPerson(span)
			}
		}
	}

	return ents
}

func classify(span string) string {
	lower := strings.ToLower(span)
	for _, kw := range orgKeywords {
		if strings.Contains(lower, kw) {
			return "organization"
		}
	}
	for _, kw := range locationHints {
		if strings.Contains(lower, kw) {
			return "location"
		}
	}
	return "person"
}

func startsCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
