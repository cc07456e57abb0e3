package search

import "time"

const monthYearLayout = "January 2006"

// EnhancePhrase appends date context to the scrape phrase so search pages
// surface articles from the requested period. Location and event type are
// never appended; they only participate in scoring.
func EnhancePhrase(phrase string, dateFrom, dateTo *time.Time) string {
	switch {
	case dateFrom != nil && dateTo != nil:
		from := dateFrom.Format(monthYearLayout)
		to := dateTo.Format(monthYearLayout)
		if from == to {
			return phrase + " " + from
		}
		return phrase + " " + from + " to " + to
	case dateFrom != nil:
		return phrase + " after " + dateFrom.Format(monthYearLayout)
	case dateTo != nil:
		return phrase + " before " + dateTo.Format(monthYearLayout)
	default:
		// Undated queries lean towards fresh coverage
		return phrase + " recent"
	}
}
