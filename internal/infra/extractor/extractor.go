// Package extractor turns raw HTML from news pages into structured article
// content. It drives the per-source CSS selector fallback lists via goquery
// and falls back to generic selectors and the Readability algorithm when a
// site's markup drifts away from its configured selectors.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"

	"event-scraper/internal/domain/entity"
)

// Rejection reasons. The scraper logs these and moves on to the next link;
// they are expected outcomes on index pages and paywalled stubs.
var (
	ErrNoTitle      = errors.New("no title found")
	ErrContentShort = errors.New("content below minimum length")
	ErrContentEcho  = errors.New("content is just the title")
)

// genericTitleSelectors are tried when the source's own title selectors
// match nothing.
var genericTitleSelectors = []string{"h1", ".article-title", ".headline", "title"}

// genericContentSelectors gather paragraph text from common article
// containers before falling back to every paragraph on the page.
var genericContentSelectors = []string{"article p", "main p", "[role=main] p", "p"}

// Extractor parses article pages.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor.
func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract parses an article page into structured content. The source's
// selector lists are tried first, then generic selectors, then Readability.
// Returns a rejection error when the page does not yield a usable article.
func (e *Extractor) Extract(htmlBody []byte, src entity.SourceConfig, pageURL string) (entity.ArticleContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return entity.ArticleContent{}, fmt.Errorf("parse html: %w", err)
	}

	title := firstText(doc, src.Selectors.Title)
	if title == "" {
		title = firstText(doc, genericTitleSelectors)
	}
	if title == "" {
		return entity.ArticleContent{}, ErrNoTitle
	}

	content := selectText(doc, src.Selectors.Content)
	if len(content) < entity.MinContentLength {
		if generic := selectText(doc, genericContentSelectors); len(generic) > len(content) {
			content = generic
		}
	}
	if len(content) < entity.MinContentLength {
		if text := e.readabilityText(htmlBody, pageURL); len(text) > len(content) {
			content = text
		}
	}

	if len(content) < entity.MinContentLength {
		return entity.ArticleContent{}, fmt.Errorf("%w: %d chars", ErrContentShort, len(content))
	}
	if content == title {
		return entity.ArticleContent{}, ErrContentEcho
	}

	return entity.ArticleContent{
		URL:           pageURL,
		SourceName:    src.Name,
		Title:         title,
		Content:       content,
		PublishedDate: e.extractDate(doc, src),
		Author:        firstText(doc, src.Selectors.Author),
		ScrapedAt:     time.Now().UTC(),
	}, nil
}

// firstText returns the cleaned text of the first node matched by any
// selector in the list.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if text := cleanText(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// extractDate pulls the publication date from the page. The datetime
// attribute of <time> elements is the most reliable signal, then the
// source's configured date selectors, parsed leniently.
func (e *Extractor) extractDate(doc *goquery.Document, src entity.SourceConfig) *time.Time {
	candidates := []string{
		selectAttr(doc, []string{"time[datetime]"}, "datetime"),
		selectAttr(doc, []string{`meta[property="article:published_time"]`}, "content"),
		firstText(doc, src.Selectors.PublishedDate),
	}

	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		if t, err := entity.ParseDate(raw); err == nil {
			return &t
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

// readabilityText runs the Readability content extraction as a last resort.
func (e *Extractor) readabilityText(htmlBody []byte, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = &url.URL{}
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBody), parsed)
	if err != nil {
		e.logger.Debug("readability fallback failed",
			slog.String("url", pageURL),
			slog.Any("error", err))
		return ""
	}
	return cleanText(article.TextContent)
}
