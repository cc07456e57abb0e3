package entity

import "strings"

// Entities is the shallow NER hint attached to an article before extraction.
// Each category is an ordered set deduplicated case-insensitively, with the
// first-seen capitalization preserved.
type Entities struct {
	Persons       []string
	Organizations []string
	Locations     []string
	Dates         []string
}

// IsEmpty reports whether no entities were detected.
func (e *Entities) IsEmpty() bool {
	return len(e.Persons) == 0 && len(e.Organizations) == 0 &&
		len(e.Locations) == 0 && len(e.Dates) == 0
}

// AddPerson appends a person name if not already present.
func (e *Entities) AddPerson(name string) { e.Persons = appendUnique(e.Persons, name) }

// AddOrganization appends an organization name if not already present.
func (e *Entities) AddOrganization(name string) { e.Organizations = appendUnique(e.Organizations, name) }

// AddLocation appends a location name if not already present.
func (e *Entities) AddLocation(name string) { e.Locations = appendUnique(e.Locations, name) }

// AddDate appends a date string if not already present.
func (e *Entities) AddDate(date string) { e.Dates = appendUnique(e.Dates, date) }

func appendUnique(list []string, value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return list
	}
	key := strings.ToLower(value)
	for _, existing := range list {
		if strings.ToLower(existing) == key {
			return list
		}
	}
	return append(list, value)
}

// MergeUnique merges additional names into list, deduplicating
// case-insensitively and preserving first-seen order and capitalization.
func MergeUnique(list []string, additions ...string) []string {
	for _, a := range additions {
		list = appendUnique(list, a)
	}
	return list
}
