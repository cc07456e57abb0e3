package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"event-scraper/internal/domain/entity"
)

// ExtractLinks pulls candidate article URLs from a search results page.
// Links are resolved against the page URL, restricted to the source's own
// hosts, deduplicated in first-seen order, and unwrapped when the source is
// a search engine that hides targets behind redirect URLs.
func ExtractLinks(htmlBody []byte, src entity.SourceConfig, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	selectors := src.Selectors.ArticleLinks
	if len(selectors) == 0 {
		selectors = []string{"a"}
	}

	allowedHosts := make(map[string]bool)
	for _, h := range src.Hosts() {
		allowedHosts[h] = true
	}

	seen := make(map[string]bool)
	var links []string

	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok {
				return
			}
			href = strings.TrimSpace(href)
			if href == "" || strings.HasPrefix(href, "#") ||
				strings.HasPrefix(href, "javascript:") ||
				strings.HasPrefix(href, "mailto:") {
				return
			}

			parsed, err := url.Parse(href)
			if err != nil {
				return
			}
			resolved := base.ResolveReference(parsed)
			if resolved.Scheme != "http" && resolved.Scheme != "https" {
				return
			}

			// Only follow links on the source's own hosts. Redirect
			// wrappers live on the source host too, so their external
			// targets survive the filter after unwrapping.
			if len(allowedHosts) > 0 && !allowedHosts[strings.ToLower(resolved.Hostname())] {
				return
			}

			target := unwrapRedirect(resolved)
			if target == pageURL || seen[target] {
				return
			}
			seen[target] = true
			links = append(links, target)
		})
	}

	return links, nil
}

// unwrapRedirect extracts the real destination from search engine redirect
// URLs (Google's /url?q= and DuckDuckGo's uddg= wrappers). Other URLs pass
// through unchanged.
func unwrapRedirect(u *url.URL) string {
	query := u.Query()
	for _, param := range []string{"q", "url", "uddg"} {
		value := query.Get(param)
		if value == "" {
			continue
		}
		if unescaped, err := url.QueryUnescape(value); err == nil {
			value = unescaped
		}
		if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
			return value
		}
	}
	return u.String()
}
