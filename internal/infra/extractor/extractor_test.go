package extractor

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"event-scraper/internal/domain/entity"
)

func testExtractor() *Extractor {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func bbcSource() entity.SourceConfig {
	return entity.SourceConfig{
		Name:    "BBC News",
		BaseURL: "https://www.bbc.co.uk",
		Selectors: entity.Selectors{
			Title:         []string{"h1.story-headline", "h1"},
			Content:       []string{"div.story-body p"},
			PublishedDate: []string{".publish-date"},
			Author:        []string{".byline"},
		},
	}
}

const longParagraph = "Officials said the incident occurred early on Tuesday morning near the central market district, with emergency services responding within minutes and cordoning off several streets while investigators examined the scene."

func TestExtractWithConfiguredSelectors(t *testing.T) {
	html := `<html><body>
		<h1 class="story-headline">Explosion reported in city centre</h1>
		<div class="byline">By Jane Reporter</div>
		<time datetime="2024-03-15T10:30:00Z">15 March 2024</time>
		<div class="story-body">
			<p>` + longParagraph + `</p>
			<p>Witnesses described hearing a loud blast.</p>
		</div>
	</body></html>`

	art, err := testExtractor().Extract([]byte(html), bbcSource(), "https://www.bbc.co.uk/news/article-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if art.Title != "Explosion reported in city centre" {
		t.Errorf("unexpected title: %q", art.Title)
	}
	if !strings.Contains(art.Content, "emergency services") {
		t.Errorf("content missing first paragraph: %q", art.Content)
	}
	if !strings.Contains(art.Content, "loud blast") {
		t.Errorf("content missing second paragraph: %q", art.Content)
	}
	if art.Author != "By Jane Reporter" {
		t.Errorf("unexpected author: %q", art.Author)
	}
	if art.PublishedDate == nil {
		t.Fatal("expected published date from time[datetime]")
	}
	want := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	if !art.PublishedDate.Equal(want) {
		t.Errorf("expected %v, got %v", want, art.PublishedDate)
	}
	if art.SourceName != "BBC News" {
		t.Errorf("unexpected source name: %q", art.SourceName)
	}
}

func TestExtractFallsBackToGenericSelectors(t *testing.T) {
	// Markup that matches none of the configured selectors.
	html := `<html><body>
		<h1>Generic headline here</h1>
		<article>
			<p>` + longParagraph + `</p>
		</article>
	</body></html>`

	art, err := testExtractor().Extract([]byte(html), bbcSource(), "https://www.bbc.co.uk/news/article-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Title != "Generic headline here" {
		t.Errorf("unexpected title: %q", art.Title)
	}
	if !strings.Contains(art.Content, "emergency services") {
		t.Errorf("generic content fallback failed: %q", art.Content)
	}
}

func TestExtractRejectsMissingTitle(t *testing.T) {
	html := `<html><body><p>` + longParagraph + `</p></body></html>`

	_, err := testExtractor().Extract([]byte(html), entity.SourceConfig{Name: "X"}, "https://example.com/a")
	if !errors.Is(err, ErrNoTitle) {
		t.Errorf("expected ErrNoTitle, got %v", err)
	}
}

func TestExtractRejectsShortContent(t *testing.T) {
	html := `<html><body><h1>Headline</h1><p>Too short.</p></body></html>`

	_, err := testExtractor().Extract([]byte(html), bbcSource(), "https://www.bbc.co.uk/news/stub")
	if !errors.Is(err, ErrContentShort) {
		t.Errorf("expected ErrContentShort, got %v", err)
	}
}

func TestExtractDateFromConfiguredSelector(t *testing.T) {
	html := `<html><body>
		<h1>Headline for the date test</h1>
		<span class="publish-date">2024-06-01</span>
		<div class="story-body"><p>` + longParagraph + `</p></div>
	</body></html>`

	art, err := testExtractor().Extract([]byte(html), bbcSource(), "https://www.bbc.co.uk/news/article-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.PublishedDate == nil {
		t.Fatal("expected published date")
	}
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !art.PublishedDate.Equal(want) {
		t.Errorf("expected %v, got %v", want, art.PublishedDate)
	}
}

func TestExtractMissingDateIsNil(t *testing.T) {
	html := `<html><body>
		<h1>Headline with no date anywhere</h1>
		<div class="story-body"><p>` + longParagraph + `</p></div>
	</body></html>`

	art, err := testExtractor().Extract([]byte(html), bbcSource(), "https://www.bbc.co.uk/news/article-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.PublishedDate != nil {
		t.Errorf("expected nil date, got %v", art.PublishedDate)
	}
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hello   world  ", "hello world"},
		{"line\none\n\nline two", "line one line two"},
		{"tabs\tand\tspaces", "tabs and spaces"},
		{"", ""},
		{"already clean", "already clean"},
	}
	for _, tc := range cases {
		if got := cleanText(tc.in); got != tc.want {
			t.Errorf("cleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
