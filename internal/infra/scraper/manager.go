// Package scraper drives per-source article collection. A source is either
// an HTML site whose search page is scraped for article links, or an RSS
// feed whose items are consumed directly (falling back to fetching the
// linked page when the feed only carries a stub description).
package scraper

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"event-scraper/internal/domain/entity"
	"event-scraper/internal/infra/extractor"
	"event-scraper/internal/infra/httpfetch"
	"event-scraper/internal/observability/metrics"
)

// Fetcher retrieves raw bytes over HTTP with per-host politeness.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts httpfetch.Options) ([]byte, error)
}

// Manager scrapes one source at a time. Concurrency across sources is the
// orchestrator's job.
type Manager struct {
	fetcher    Fetcher
	extractor  *extractor.Extractor
	maxResults int
	logger     *slog.Logger
}

// NewManager creates a Manager. maxResults caps how many candidate links
// from a search page are followed per source.
func NewManager(fetcher Fetcher, ex *extractor.Extractor, maxResults int, logger *slog.Logger) *Manager {
	if maxResults <= 0 {
		maxResults = 10
	}
	return &Manager{
		fetcher:    fetcher,
		extractor:  ex,
		maxResults: maxResults,
		logger:     logger,
	}
}

// ScrapeSource collects articles matching the phrase from one source.
// Failures on individual pages are logged and skipped; a source that yields
// nothing returns an empty slice, not an error. The cancelled probe is
// checked between page fetches so a cancelled search stops promptly.
func (m *Manager) ScrapeSource(ctx context.Context, src entity.SourceConfig, phrase string, cancelled func() bool) []entity.ArticleContent {
	logger := m.logger.With(slog.String("source", src.Name))

	var articles []entity.ArticleContent
	switch src.Type {
	case entity.SourceTypeRSS:
		articles = m.scrapeRSS(ctx, src, phrase, cancelled, logger)
	default:
		articles = m.scrapeHTML(ctx, src, phrase, cancelled, logger)
	}

	metrics.RecordArticlesScraped(src.Name, len(articles))
	logger.Info("source scrape finished",
		slog.Int("articles", len(articles)))
	return articles
}

func (m *Manager) scrapeHTML(ctx context.Context, src entity.SourceConfig, phrase string, cancelled func() bool, logger *slog.Logger) []entity.ArticleContent {
	opts := fetchOptions(src)
	searchURL := src.SearchURL(phrase)

	body, err := m.fetcher.Fetch(ctx, searchURL, opts)
	if err != nil {
		logger.Warn("search page fetch failed",
			slog.String("url", searchURL),
			slog.Any("error", err))
		return nil
	}

	links, err := extractor.ExtractLinks(body, src, searchURL)
	if err != nil {
		logger.Warn("link extraction failed",
			slog.String("url", searchURL),
			slog.Any("error", err))
		return nil
	}
	if len(links) > m.maxResults {
		links = links[:m.maxResults]
	}
	logger.Debug("search results collected", slog.Int("links", len(links)))

	var articles []entity.ArticleContent
	for _, link := range links {
		if cancelled() || ctx.Err() != nil {
			logger.Debug("scrape stopped early",
				slog.Int("articles", len(articles)))
			break
		}

		page, err := m.fetcher.Fetch(ctx, link, opts)
		if err != nil {
			logger.Debug("article fetch failed",
				slog.String("url", link),
				slog.Any("error", err))
			continue
		}

		article, err := m.extractor.Extract(page, src, link)
		if err != nil {
			logger.Debug("article rejected",
				slog.String("url", link),
				slog.Any("error", err))
			continue
		}
		articles = append(articles, article)
	}

	return articles
}

func (m *Manager) scrapeRSS(ctx context.Context, src entity.SourceConfig, phrase string, cancelled func() bool, logger *slog.Logger) []entity.ArticleContent {
	opts := fetchOptions(src)
	feedURL := src.SearchURL(phrase)

	body, err := m.fetcher.Fetch(ctx, feedURL, opts)
	if err != nil {
		logger.Warn("feed fetch failed",
			slog.String("url", feedURL),
			slog.Any("error", err))
		return nil
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		logger.Warn("feed parse failed",
			slog.String("url", feedURL),
			slog.Any("error", err))
		return nil
	}

	var articles []entity.ArticleContent
	for _, item := range feed.Items {
		if len(articles) >= m.maxResults {
			break
		}
		if cancelled() || ctx.Err() != nil {
			break
		}

		article, ok := m.articleFromItem(ctx, src, item, opts, logger)
		if ok {
			articles = append(articles, article)
		}
	}

	return articles
}

// articleFromItem builds an article from a feed item. Items carrying a full
// body are used as-is; stub items are resolved by fetching the linked page.
func (m *Manager) articleFromItem(ctx context.Context, src entity.SourceConfig, item *gofeed.Item, opts httpfetch.Options, logger *slog.Logger) (entity.ArticleContent, bool) {
	content := item.Content
	if content == "" {
		content = item.Description
	}
	text := htmlToText(content)

	if len(text) >= entity.MinContentLength {
		return entity.ArticleContent{
			URL:           item.Link,
			SourceName:    src.Name,
			Title:         htmlToText(item.Title),
			Content:       text,
			PublishedDate: item.PublishedParsed,
			Author:        feedAuthor(item),
			ScrapedAt:     time.Now().UTC(),
		}, true
	}

	if item.Link == "" {
		return entity.ArticleContent{}, false
	}

	page, err := m.fetcher.Fetch(ctx, item.Link, opts)
	if err != nil {
		logger.Debug("feed item fetch failed",
			slog.String("url", item.Link),
			slog.Any("error", err))
		return entity.ArticleContent{}, false
	}

	article, err := m.extractor.Extract(page, src, item.Link)
	if err != nil {
		logger.Debug("feed item rejected",
			slog.String("url", item.Link),
			slog.Any("error", err))
		return entity.ArticleContent{}, false
	}

	if article.PublishedDate == nil && item.PublishedParsed != nil {
		article.PublishedDate = item.PublishedParsed
	}
	return article, true
}

func fetchOptions(src entity.SourceConfig) httpfetch.Options {
	return httpfetch.Options{
		RateLimit: time.Duration(src.RateLimitSeconds * float64(time.Second)),
		UserAgent: src.UserAgent,
	}
}

func feedAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return item.Authors[0].Name
	}
	return ""
}

// htmlToText strips markup from feed fields, which often carry HTML, and
// normalizes whitespace.
func htmlToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
