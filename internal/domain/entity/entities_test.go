package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntities_CaseInsensitiveDedup(t *testing.T) {
	var e Entities
	e.AddPerson("Narendra Modi")
	e.AddPerson("narendra modi")
	e.AddPerson("NARENDRA MODI")
	e.AddOrganization("United Nations")
	e.AddOrganization("united nations")

	assert.Equal(t, []string{"Narendra Modi"}, e.Persons)
	assert.Equal(t, []string{"United Nations"}, e.Organizations)
}

func TestEntities_IgnoresBlank(t *testing.T) {
	var e Entities
	e.AddLocation("")
	e.AddLocation("   ")
	e.AddLocation("Mumbai")
	assert.Equal(t, []string{"Mumbai"}, e.Locations)
	assert.False(t, e.IsEmpty())
}

func TestMergeUnique(t *testing.T) {
	got := MergeUnique([]string{"Alice", "Bob"}, "bob", "Carol", "ALICE", "Dave")
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"}, got)
}

func TestEventData_MatchDate(t *testing.T) {
	e := &EventData{}
	assert.Nil(t, e.MatchDate())

	pub := mustDate(t, "2025-03-10")
	e.ArticlePublishedDate = &pub
	assert.Equal(t, &pub, e.MatchDate())

	evt := mustDate(t, "2025-03-15")
	e.EventDate = &evt
	assert.Equal(t, &evt, e.MatchDate())
}

func TestClampUnit(t *testing.T) {
	assert.Equal(t, 0.0, ClampUnit(-0.5))
	assert.Equal(t, 1.0, ClampUnit(1.5))
	assert.Equal(t, 0.75, ClampUnit(0.75))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}
