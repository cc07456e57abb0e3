package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-scraper/internal/domain/entity"
)

// fakeScraper returns canned articles per source and records call order.
type fakeScraper struct {
	mu       sync.Mutex
	pages    map[string][]entity.ArticleContent
	scraped  []string
	onScrape func(src entity.SourceConfig)
}

func (f *fakeScraper) ScrapeSource(_ context.Context, src entity.SourceConfig, _ string, _ func() bool) []entity.ArticleContent {
	f.mu.Lock()
	f.scraped = append(f.scraped, src.Name)
	hook := f.onScrape
	f.mu.Unlock()
	if hook != nil {
		hook(src)
	}
	return f.pages[src.Name]
}

func (f *fakeScraper) scrapedSources() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.scraped))
	copy(out, f.scraped)
	return out
}

// fakeLLMExtractor returns canned events per article URL, with optional
// per-article delays that respect the context deadline.
type fakeLLMExtractor struct {
	mu     sync.Mutex
	calls  int
	events map[string]*entity.EventData
	delays map[string]time.Duration
	onCall func(url string)
}

func (f *fakeLLMExtractor) ExtractEvent(ctx context.Context, article entity.ArticleContent) (*entity.EventData, error) {
	f.mu.Lock()
	f.calls++
	event := f.events[article.URL]
	delay := f.delays[article.URL]
	hook := f.onCall
	f.mu.Unlock()

	if hook != nil {
		hook(article.URL)
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if event == nil {
		return nil, nil
	}
	clone := *event
	return &clone, nil
}

func (f *fakeLLMExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeScorer returns per-title scores, defaulting to 0.9.
type fakeScorer struct {
	scores map[string]float64
}

func (f *fakeScorer) Score(_ entity.Query, event *entity.EventData) float64 {
	if s, ok := f.scores[event.Title]; ok {
		return s
	}
	return 0.9
}

func testSource(name string) entity.SourceConfig {
	return entity.SourceConfig{
		Name:              name,
		BaseURL:           "https://" + name + ".example.com",
		SearchURLTemplate: "https://" + name + ".example.com/search?q={query}",
		Enabled:           true,
		Type:              entity.SourceTypeHTML,
		Selectors: entity.Selectors{
			Title:   []string{"h1"},
			Content: []string{"article p"},
		},
	}
}

func testArticles(source string, n int) []entity.ArticleContent {
	out := make([]entity.ArticleContent, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, entity.ArticleContent{
			URL:        fmt.Sprintf("https://%s.example.com/article-%d", source, i),
			SourceName: source,
			Title:      fmt.Sprintf("%s article %d", source, i),
			Content:    "Body of the article.",
		})
	}
	return out
}

func testEvent(title string) *entity.EventData {
	return &entity.EventData{
		EventType:  entity.EventTypeProtest,
		Title:      title,
		Summary:    "Something happened.",
		Confidence: 0.9,
	}
}

func newTestService(sources []entity.SourceConfig, scraper Scraper, extractor Extractor, scorer Scorer, cfg Config) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(NewRegistry(), sources, scraper, extractor, scorer, cfg, logger)
	svc.grace = time.Millisecond
	return svc
}

func collectFrames(t *testing.T, frames <-chan Frame) []Frame {
	t.Helper()
	var out []Frame
	timeout := time.After(10 * time.Second)
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return out
			}
			out = append(out, frame)
		case <-timeout:
			t.Fatal("timed out waiting for stream to close")
		}
	}
}

func assertStreamInvariants(t *testing.T, frames []Frame) {
	t.Helper()
	require.NotEmpty(t, frames)

	_, ok := frames[0].(SessionFrame)
	assert.True(t, ok, "first frame must be the session frame")

	switch frames[len(frames)-1].(type) {
	case CompleteFrame, CancelledFrame, ErrorFrame:
	default:
		t.Fatalf("last frame must be terminal, got %T", frames[len(frames)-1])
	}

	for i, frame := range frames[:len(frames)-1] {
		if i == 0 {
			continue
		}
		switch frame.(type) {
		case SessionFrame:
			t.Fatalf("duplicate session frame at index %d", i)
		case CompleteFrame, CancelledFrame, ErrorFrame:
			t.Fatalf("terminal frame at index %d is not last", i)
		}
	}

	var prev ProgressFrame
	seen := false
	for _, frame := range frames {
		p, ok := frame.(ProgressFrame)
		if !ok {
			continue
		}
		if seen {
			assert.GreaterOrEqual(t, p.ArticlesScraped, prev.ArticlesScraped)
			assert.GreaterOrEqual(t, p.ArticlesExtracted, prev.ArticlesExtracted)
			assert.GreaterOrEqual(t, p.EventsMatched, prev.EventsMatched)
			assert.GreaterOrEqual(t, p.SourcesDone, prev.SourcesDone)
		}
		prev, seen = p, true
	}
}

func eventFrames(frames []Frame) []EventFrame {
	var out []EventFrame
	for _, f := range frames {
		if ef, ok := f.(EventFrame); ok {
			out = append(out, ef)
		}
	}
	return out
}

func TestStartSearchRejectsInvalidQuery(t *testing.T) {
	svc := newTestService(nil, &fakeScraper{}, &fakeLLMExtractor{}, &fakeScorer{}, Config{})

	_, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "   "})
	require.Error(t, err)
	assert.Nil(t, frames)
	assert.Equal(t, 0, svc.registry.Len(), "invalid query must not create a session")
}

func TestSearchHappyPath(t *testing.T) {
	articles := testArticles("alpha", 2)
	scraper := &fakeScraper{pages: map[string][]entity.ArticleContent{"alpha": articles}}
	extractor := &fakeLLMExtractor{events: map[string]*entity.EventData{
		articles[0].URL: testEvent("Protest downtown"),
		articles[1].URL: testEvent("March on the square"),
	}}

	svc := newTestService([]entity.SourceConfig{testSource("alpha")}, scraper, extractor, &fakeScorer{}, Config{})

	id, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "protest"})
	require.NoError(t, err)

	all := collectFrames(t, frames)
	assertStreamInvariants(t, all)

	events := eventFrames(all)
	require.Len(t, events, 2)
	for _, ef := range events {
		assert.InDelta(t, 0.9, ef.Event.RelevanceScore, 1e-9)
	}

	complete, ok := all[len(all)-1].(CompleteFrame)
	require.True(t, ok)
	assert.Equal(t, 2, complete.TotalEvents)
	assert.Equal(t, 2, complete.ArticlesProcessed)
	assert.Greater(t, complete.ProcessingTime, 0.0)

	session, err := svc.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, session.Status())
	assert.Len(t, session.Events(), 2)

	counters := session.Counters()
	assert.Equal(t, 2, counters.ArticlesScraped)
	assert.Equal(t, 2, counters.ArticlesExtracted)
	assert.Equal(t, 2, counters.EventsMatched)
}

func TestSearchCancelledDuringScraping(t *testing.T) {
	scraper := &fakeScraper{pages: map[string][]entity.ArticleContent{
		"alpha": testArticles("alpha", 3),
		"beta":  testArticles("beta", 3),
	}}
	extractor := &fakeLLMExtractor{}

	svc := newTestService(
		[]entity.SourceConfig{testSource("alpha"), testSource("beta")},
		scraper, extractor, &fakeScorer{},
		Config{MaxConcurrentScrapes: 1})

	idCh := make(chan string, 1)
	scraper.onScrape = func(src entity.SourceConfig) {
		if src.Name == "alpha" {
			require.NoError(t, svc.CancelSession(<-idCh))
		}
	}

	id, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "protest"})
	require.NoError(t, err)
	idCh <- id

	all := collectFrames(t, frames)
	assertStreamInvariants(t, all)

	assert.Equal(t, []string{"alpha"}, scraper.scrapedSources(), "second source must not be scraped")
	assert.Equal(t, 0, extractor.callCount(), "no LLM work after cancellation")
	assert.Empty(t, eventFrames(all))

	cancelled, ok := all[len(all)-1].(CancelledFrame)
	require.True(t, ok)
	assert.Equal(t, 0, cancelled.TotalEvents)

	session, err := svc.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, session.Status())
}

func TestSearchSkipsTimedOutArticle(t *testing.T) {
	articles := testArticles("alpha", 5)
	scraper := &fakeScraper{pages: map[string][]entity.ArticleContent{"alpha": articles}}

	extractor := &fakeLLMExtractor{
		events: map[string]*entity.EventData{},
		delays: map[string]time.Duration{articles[1].URL: 300 * time.Millisecond},
	}
	for i, a := range articles {
		extractor.events[a.URL] = testEvent(fmt.Sprintf("Event %d", i+1))
	}

	svc := newTestService([]entity.SourceConfig{testSource("alpha")}, scraper, extractor, &fakeScorer{},
		Config{ArticleTimeout: 50 * time.Millisecond, TotalTimeout: 5 * time.Second})

	_, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "protest"})
	require.NoError(t, err)

	all := collectFrames(t, frames)
	assertStreamInvariants(t, all)

	assert.Len(t, eventFrames(all), 4, "the timed-out article yields no event")

	complete, ok := all[len(all)-1].(CompleteFrame)
	require.True(t, ok)
	assert.Equal(t, 5, complete.ArticlesProcessed, "timed-out articles still count as processed")
	assert.Equal(t, 4, complete.TotalEvents)
}

func TestSearchStopsEnqueuingWhenBudgetExhausted(t *testing.T) {
	articles := testArticles("alpha", 3)
	scraper := &fakeScraper{pages: map[string][]entity.ArticleContent{"alpha": articles}}

	extractor := &fakeLLMExtractor{
		events: map[string]*entity.EventData{},
		delays: map[string]time.Duration{},
	}
	for i, a := range articles {
		extractor.events[a.URL] = testEvent(fmt.Sprintf("Event %d", i+1))
		extractor.delays[a.URL] = 80 * time.Millisecond
	}

	svc := newTestService([]entity.SourceConfig{testSource("alpha")}, scraper, extractor, &fakeScorer{},
		Config{
			ArticleTimeout:           40 * time.Millisecond,
			TotalTimeout:             50 * time.Millisecond,
			MaxConcurrentExtractions: 1,
		})

	_, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "protest"})
	require.NoError(t, err)

	all := collectFrames(t, frames)
	assertStreamInvariants(t, all)

	// Budget exhaustion still completes with whatever was collected
	complete, ok := all[len(all)-1].(CompleteFrame)
	require.True(t, ok)
	assert.Less(t, complete.ArticlesProcessed, 3, "remaining articles are dropped once the budget elapses")
	assert.Equal(t, 0, complete.TotalEvents)
}

func TestSearchDropsEventBelowRelevanceFloor(t *testing.T) {
	articles := testArticles("alpha", 1)
	scraper := &fakeScraper{pages: map[string][]entity.ArticleContent{"alpha": articles}}
	extractor := &fakeLLMExtractor{events: map[string]*entity.EventData{
		articles[0].URL: testEvent("Data breach in New York"),
	}}
	scorer := &fakeScorer{scores: map[string]float64{"Data breach in New York": 0.19}}

	svc := newTestService([]entity.SourceConfig{testSource("alpha")}, scraper, extractor, scorer, Config{})

	_, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "protest in Mumbai"})
	require.NoError(t, err)

	all := collectFrames(t, frames)
	assertStreamInvariants(t, all)

	assert.Empty(t, eventFrames(all))

	complete, ok := all[len(all)-1].(CompleteFrame)
	require.True(t, ok)
	assert.Equal(t, 0, complete.TotalEvents)
	assert.Equal(t, 1, complete.ArticlesProcessed)

	var last ProgressFrame
	for _, f := range all {
		if p, ok := f.(ProgressFrame); ok {
			last = p
		}
	}
	assert.Equal(t, 1, last.ArticlesExtracted, "the candidate was extracted")
	assert.Equal(t, 0, last.EventsMatched, "but did not survive the floor")
}

func TestSearchCancelledDuringExtraction(t *testing.T) {
	articles := testArticles("alpha", 3)
	scraper := &fakeScraper{pages: map[string][]entity.ArticleContent{"alpha": articles}}

	extractor := &fakeLLMExtractor{events: map[string]*entity.EventData{}}
	for i, a := range articles {
		extractor.events[a.URL] = testEvent(fmt.Sprintf("Event %d", i+1))
	}

	svc := newTestService([]entity.SourceConfig{testSource("alpha")}, scraper, extractor, &fakeScorer{},
		Config{MaxConcurrentExtractions: 1})

	idCh := make(chan string, 1)
	var once sync.Once
	extractor.onCall = func(string) {
		once.Do(func() {
			require.NoError(t, svc.CancelSession(<-idCh))
		})
	}

	id, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "protest"})
	require.NoError(t, err)
	idCh <- id

	all := collectFrames(t, frames)
	assertStreamInvariants(t, all)

	assert.Equal(t, 1, extractor.callCount(), "no LLM call may start after cancellation")
	assert.Empty(t, eventFrames(all), "in-flight results after cancellation are discarded")

	cancelled, ok := all[len(all)-1].(CancelledFrame)
	require.True(t, ok)
	assert.Equal(t, 0, cancelled.TotalEvents)
}

func TestSearchCompletesWithZeroSources(t *testing.T) {
	extractor := &fakeLLMExtractor{}
	svc := newTestService(nil, &fakeScraper{}, extractor, &fakeScorer{}, Config{})

	_, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "protest"})
	require.NoError(t, err)

	all := collectFrames(t, frames)
	assertStreamInvariants(t, all)
	require.Len(t, all, 2)

	complete, ok := all[1].(CompleteFrame)
	require.True(t, ok)
	assert.Equal(t, 0, complete.TotalEvents)
	assert.Equal(t, 0, complete.ArticlesProcessed)
	assert.Equal(t, 0, extractor.callCount())
}

func TestSearchDeduplicatesURLsAcrossSources(t *testing.T) {
	shared := entity.ArticleContent{
		URL:     "https://alpha.example.com/shared",
		Title:   "Shared story",
		Content: "Body.",
	}
	scraper := &fakeScraper{pages: map[string][]entity.ArticleContent{
		"alpha": {shared},
		"beta":  {shared},
	}}
	extractor := &fakeLLMExtractor{events: map[string]*entity.EventData{
		shared.URL: testEvent("Shared story"),
	}}

	svc := newTestService(
		[]entity.SourceConfig{testSource("alpha"), testSource("beta")},
		scraper, extractor, &fakeScorer{},
		Config{MaxConcurrentScrapes: 1})

	id, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "protest"})
	require.NoError(t, err)

	all := collectFrames(t, frames)
	assertStreamInvariants(t, all)

	assert.Equal(t, 1, extractor.callCount(), "the duplicate article reaches the LLM once")

	session, err := svc.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Counters().ArticlesScraped)
}

func TestSearchClientDisconnectCancels(t *testing.T) {
	scraper := &fakeScraper{pages: map[string][]entity.ArticleContent{
		"alpha": testArticles("alpha", 2),
	}}
	extractor := &fakeLLMExtractor{}

	svc := newTestService([]entity.SourceConfig{testSource("alpha")}, scraper, extractor, &fakeScorer{}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id, frames, err := svc.StartSearch(ctx, entity.Query{Phrase: "protest"})
	require.NoError(t, err)

	collectFrames(t, frames)

	assert.Empty(t, scraper.scrapedSources(), "no source fetch after disconnect")
	assert.Equal(t, 0, extractor.callCount())

	session, err := svc.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, session.Status())
}

func TestSearchIgnoresDisabledSources(t *testing.T) {
	disabled := testSource("beta")
	disabled.Enabled = false

	scraper := &fakeScraper{pages: map[string][]entity.ArticleContent{
		"alpha": testArticles("alpha", 1),
		"beta":  testArticles("beta", 1),
	}}

	svc := newTestService(
		[]entity.SourceConfig{testSource("alpha"), disabled},
		scraper, &fakeLLMExtractor{}, &fakeScorer{}, Config{})

	_, frames, err := svc.StartSearch(context.Background(), entity.Query{Phrase: "protest"})
	require.NoError(t, err)

	collectFrames(t, frames)
	assert.Equal(t, []string{"alpha"}, scraper.scrapedSources())
}
