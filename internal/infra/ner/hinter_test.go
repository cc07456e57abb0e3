package ner

import (
	"slices"
	"testing"
)

func TestExtractPersons(t *testing.T) {
	h := NewHinter()
	ents := h.Extract(
		"Minister speaks after blast",
		"Prime Minister Narendra Modi condemned the attack. John Smith, a witness, described the scene.",
	)

	if !slices.Contains(ents.Persons, "Narendra Modi") &&
		!slices.Contains(ents.Persons, "Prime Minister Narendra Modi") {
		t.Errorf("expected Narendra Modi in persons, got %v", ents.Persons)
	}
	if !slices.Contains(ents.Persons, "John Smith") {
		t.Errorf("expected John Smith in persons, got %v", ents.Persons)
	}
}

func TestExtractOrganizations(t *testing.T) {
	h := NewHinter()
	ents := h.Extract(
		"Group claims responsibility",
		"The Interior Ministry said the Haqqani Network was behind the bombing near the National Bank building.",
	)

	if len(ents.Organizations) == 0 {
		t.Fatal("expected organizations")
	}
	found := false
	for _, org := range ents.Organizations {
		if org == "Interior Ministry" || org == "National Bank" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ministry or bank in organizations, got %v", ents.Organizations)
	}
}

func TestExtractDates(t *testing.T) {
	h := NewHinter()
	ents := h.Extract(
		"Attack on June 15, 2024",
		"The explosion happened on 2024-06-15 according to reports from March 2023.",
	)

	if !slices.Contains(ents.Dates, "June 15, 2024") {
		t.Errorf("expected 'June 15, 2024' in dates, got %v", ents.Dates)
	}
	if !slices.Contains(ents.Dates, "2024-06-15") {
		t.Errorf("expected ISO date in dates, got %v", ents.Dates)
	}
	if !slices.Contains(ents.Dates, "March 2023") {
		t.Errorf("expected 'March 2023' in dates, got %v", ents.Dates)
	}
}

func TestExtractSkipsSentenceStarters(t *testing.T) {
	h := NewHinter()
	ents := h.Extract("", "The market reopened. However, traders stayed away. Officials promised support.")

	for _, p := range ents.Persons {
		if p == "The" || p == "However" || p == "Officials" {
			t.Errorf("sentence starter leaked into persons: %v", ents.Persons)
		}
	}
}

func TestExtractCapsEachType(t *testing.T) {
	content := ""
	for _, pair := range []string{
		"Alice Anderson", "Bob Brown", "Carol Clark", "Dan Davis", "Eve Evans",
		"Frank Ford", "Grace Green", "Henry Hill", "Iris Irving", "Jack Jones",
		"Kate King", "Liam Lewis", "Mona Moore",
	} {
		content += pair + " attended the meeting. "
	}

	ents := NewHinter().Extract("", content)
	if len(ents.Persons) > 10 {
		t.Errorf("persons should be capped at 10, got %d", len(ents.Persons))
	}
}

func TestExtractEmptyInput(t *testing.T) {
	ents := NewHinter().Extract("", "")
	if !ents.IsEmpty() {
		t.Errorf("expected no entities from empty input, got %+v", ents)
	}
}
