package entity

import "strings"

// PerpetratorType is the controlled vocabulary for the actor behind an event.
type PerpetratorType string

const (
	PerpetratorTerroristGroup       PerpetratorType = "terrorist_group"
	PerpetratorStateActor           PerpetratorType = "state_actor"
	PerpetratorCriminalOrganization PerpetratorType = "criminal_organization"
	PerpetratorIndividual           PerpetratorType = "individual"
	PerpetratorMultipleParties      PerpetratorType = "multiple_parties"
	PerpetratorUnknown              PerpetratorType = "unknown"
	PerpetratorNotApplicable        PerpetratorType = "not_applicable"
)

// AllPerpetratorTypes returns every member of the vocabulary in a stable order.
func AllPerpetratorTypes() []PerpetratorType {
	return []PerpetratorType{
		PerpetratorTerroristGroup,
		PerpetratorStateActor,
		PerpetratorCriminalOrganization,
		PerpetratorIndividual,
		PerpetratorMultipleParties,
		PerpetratorUnknown,
		PerpetratorNotApplicable,
	}
}

// String returns the wire representation of the perpetrator type.
func (t PerpetratorType) String() string {
	return string(t)
}

// ParsePerpetratorType folds an arbitrary string into the PerpetratorType
// vocabulary using the same staged matching as ParseEventType: exact match,
// keyword mapping, then substring containment. Anything unmatched becomes
// PerpetratorUnknown. Idempotent.
func ParsePerpetratorType(raw string) PerpetratorType {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	if normalized == "" {
		return PerpetratorUnknown
	}

	for _, m := range AllPerpetratorTypes() {
		if normalized == string(m) {
			return m
		}
	}

	switch {
	case strings.Contains(normalized, "terror"),
		strings.Contains(normalized, "militant"),
		strings.Contains(normalized, "insurgent"):
		return PerpetratorTerroristGroup
	case strings.Contains(normalized, "state"),
		strings.Contains(normalized, "government"),
		strings.Contains(normalized, "nation"):
		return PerpetratorStateActor
	case strings.Contains(normalized, "criminal"),
		strings.Contains(normalized, "gang"),
		strings.Contains(normalized, "cartel"),
		strings.Contains(normalized, "mafia"):
		return PerpetratorCriminalOrganization
	case strings.Contains(normalized, "individual"),
		strings.Contains(normalized, "lone"),
		strings.Contains(normalized, "person"):
		return PerpetratorIndividual
	case strings.Contains(normalized, "multiple"),
		strings.Contains(normalized, "several"),
		strings.Contains(normalized, "various"):
		return PerpetratorMultipleParties
	case strings.Contains(normalized, "none"),
		strings.Contains(normalized, "n/a"),
		strings.Contains(normalized, "not_applicable"):
		return PerpetratorNotApplicable
	}

	if m, ok := bestSubstringMatch(normalized, perpetratorTypeNames()); ok {
		return PerpetratorType(m)
	}
	return PerpetratorUnknown
}

func perpetratorTypeNames() []string {
	members := AllPerpetratorTypes()
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = string(m)
	}
	return names
}
