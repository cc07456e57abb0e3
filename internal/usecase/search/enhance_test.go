package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func monthDate(y int, m time.Month) *time.Time {
	t := time.Date(y, m, 15, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEnhancePhrase(t *testing.T) {
	cases := []struct {
		name string
		from *time.Time
		to   *time.Time
		want string
	}{
		{"no dates", nil, nil, "bombing in kabul recent"},
		{"same month", monthDate(2024, time.June), monthDate(2024, time.June), "bombing in kabul June 2024"},
		{"range", monthDate(2023, time.January), monthDate(2023, time.February), "bombing in kabul January 2023 to February 2023"},
		{"only from", monthDate(2023, time.January), nil, "bombing in kabul after January 2023"},
		{"only to", nil, monthDate(2023, time.February), "bombing in kabul before February 2023"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EnhancePhrase("bombing in kabul", tc.from, tc.to))
		})
	}
}
