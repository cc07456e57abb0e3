package extractor

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// cleanText collapses whitespace and strips control characters so scraped
// fragments compare and truncate predictably downstream.
func cleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastSpace := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	return strings.TrimSpace(b.String())
}

// selectText tries each selector in order and returns the first non-empty
// cleaned text. Multi-node matches are joined with newlines (paragraph lists).
func selectText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}

		var parts []string
		nodes.Each(func(_ int, s *goquery.Selection) {
			if text := cleanText(s.Text()); text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}
	return ""
}

// selectAttr tries each selector in order and returns the first non-empty
// attribute value.
func selectAttr(doc *goquery.Document, selectors []string, attr string) string {
	for _, sel := range selectors {
		if value, ok := doc.Find(sel).First().Attr(attr); ok {
			if value = strings.TrimSpace(value); value != "" {
				return value
			}
		}
	}
	return ""
}
