package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// Source types. An empty type is treated as HTML for backward compatibility
// with configs written before RSS sources existed.
const (
	SourceTypeHTML = "html"
	SourceTypeRSS  = "rss"
)

// Selectors holds the CSS selector fallback lists for one source. Each field
// is an ordered list tried left to right; the first selector yielding nonempty
// text wins. Title and Content are required for HTML sources.
type Selectors struct {
	Title         []string
	Content       []string
	PublishedDate []string
	Author        []string
	ArticleLinks  []string
}

// ParseSelectorList splits a comma-separated selector string into an ordered
// fallback list, trimming whitespace and dropping empty entries. Configs write
// selectors as a single string; call sites always see the parsed form.
func ParseSelectorList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SourceConfig describes one configured news source. Loaded at startup and
// immutable thereafter.
type SourceConfig struct {
	Name             string
	BaseURL          string
	SearchURLTemplate string
	Enabled          bool
	Category         string
	Type             string
	RateLimitSeconds float64
	Selectors        Selectors
	UserAgent        string
}

// Validate checks the SourceConfig fields. An empty Type is normalized to
// SourceTypeHTML before checking.
func (s *SourceConfig) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "source name is required"}
	}
	if s.Type == "" {
		s.Type = SourceTypeHTML
	}
	if s.Type != SourceTypeHTML && s.Type != SourceTypeRSS {
		return &ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("invalid source type: %s (must be html or rss)", s.Type),
		}
	}

	parsed, err := url.Parse(s.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &ValidationError{Field: "base_url", Message: "base_url must be an absolute URL"}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return &ValidationError{Field: "base_url", Message: "base_url must use http or https scheme"}
	}

	if !strings.Contains(s.SearchURLTemplate, "{query}") {
		return &ValidationError{
			Field:   "search_url_template",
			Message: "search_url_template must contain a {query} placeholder",
		}
	}

	if s.RateLimitSeconds < 0 {
		return &ValidationError{Field: "rate_limit_seconds", Message: "rate_limit_seconds must be >= 0"}
	}

	if s.Type == SourceTypeHTML {
		if len(s.Selectors.Title) == 0 {
			return &ValidationError{Field: "selectors.title", Message: "title selector is required"}
		}
		if len(s.Selectors.Content) == 0 {
			return &ValidationError{Field: "selectors.content", Message: "content selector is required"}
		}
	}

	return nil
}

// SearchURL substitutes the query phrase into the source's search URL
// template, URL-encoding the phrase.
func (s *SourceConfig) SearchURL(phrase string) string {
	return strings.ReplaceAll(s.SearchURLTemplate, "{query}", url.QueryEscape(phrase))
}

// Hosts returns the hostnames article links may point at for this source:
// the base URL's host plus its www-stripped (or www-prefixed) variant.
func (s *SourceConfig) Hosts() []string {
	parsed, err := url.Parse(s.BaseURL)
	if err != nil || parsed.Hostname() == "" {
		return nil
	}
	host := strings.ToLower(parsed.Hostname())
	if stripped, ok := strings.CutPrefix(host, "www."); ok {
		return []string{host, stripped}
	}
	return []string{host, "www." + host}
}
