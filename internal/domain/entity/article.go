package entity

import "time"

// MinContentLength is the minimum number of characters an article body must
// contain after whitespace normalization to be worth extracting from.
const MinContentLength = 100

// ArticleContent is the scraped content of one news article URL.
// Produced by the content extractor, consumed by the event extractor,
// never mutated after construction.
type ArticleContent struct {
	URL           string
	SourceName    string
	Title         string
	Content       string
	PublishedDate *time.Time
	Author        string
	ScrapedAt     time.Time
}
