// Package search drives one search end-to-end: concurrent source scraping,
// budgeted LLM extraction, relevance scoring, and a back-pressured frame
// stream, with cooperative cancellation at every stage boundary.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"event-scraper/internal/domain/entity"
	"event-scraper/internal/observability/logging"
	"event-scraper/internal/observability/metrics"
	"event-scraper/internal/observability/slo"
	"event-scraper/internal/observability/tracing"
)

// registrationGrace is how long the orchestrator waits after the session
// frame so a slow client can record the id before any cancellation request
// could reference it.
const registrationGrace = 100 * time.Millisecond

// defaultSourceTimeout bounds one source's whole scrape, search page and
// article fetches included.
const defaultSourceTimeout = 120 * time.Second

// Scraper collects articles for one source. Implementations poll cancelled
// between article fetches and return whatever they have collected so far.
type Scraper interface {
	ScrapeSource(ctx context.Context, src entity.SourceConfig, phrase string, cancelled func() bool) []entity.ArticleContent
}

// Extractor turns one article into an event. A nil event with nil error
// means the article was deliberately skipped.
type Extractor interface {
	ExtractEvent(ctx context.Context, article entity.ArticleContent) (*entity.EventData, error)
}

// Scorer rates an event's relevance to the query, in [0, 1].
type Scorer interface {
	Score(query entity.Query, event *entity.EventData) float64
}

// Config bounds the orchestrator's fan-out and time budgets.
type Config struct {
	// MaxConcurrentScrapes is the per-source fan-out.
	MaxConcurrentScrapes int

	// MaxConcurrentExtractions bounds the LLM phase fan-out.
	MaxConcurrentExtractions int

	// SourceTimeout is the deadline for one source's whole scrape.
	SourceTimeout time.Duration

	// MaxArticles caps how many scraped articles reach the LLM.
	MaxArticles int

	// ArticleTimeout is the per-article LLM deadline.
	ArticleTimeout time.Duration

	// TotalTimeout is the whole LLM phase budget.
	TotalTimeout time.Duration

	// MinRelevance is the score floor below which events are dropped.
	MinRelevance float64
}

// DefaultConfig returns the standard budgets.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentScrapes:     5,
		MaxConcurrentExtractions: 5,
		SourceTimeout:            defaultSourceTimeout,
		MaxArticles:              5,
		ArticleTimeout:           120 * time.Second,
		TotalTimeout:             480 * time.Second,
		MinRelevance:             0.30,
	}
}

// Service is the search orchestrator. One StartSearch call runs one
// goroutine that owns the whole pipeline and all frame emission.
type Service struct {
	registry  *Registry
	sources   []entity.SourceConfig
	scraper   Scraper
	extractor Extractor
	scorer    Scorer
	cfg       Config
	logger    *slog.Logger

	// grace is overridable in tests
	grace time.Duration
}

// NewService wires the orchestrator. Disabled sources are dropped up front;
// zero-valued config fields fall back to the defaults.
func NewService(registry *Registry, sources []entity.SourceConfig, scraper Scraper, extractor Extractor, scorer Scorer, cfg Config, logger *slog.Logger) *Service {
	def := DefaultConfig()
	if cfg.MaxConcurrentScrapes <= 0 {
		cfg.MaxConcurrentScrapes = def.MaxConcurrentScrapes
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = def.MaxArticles
	}
	if cfg.MaxConcurrentExtractions <= 0 {
		cfg.MaxConcurrentExtractions = cfg.MaxArticles
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = def.SourceTimeout
	}
	if cfg.ArticleTimeout <= 0 {
		cfg.ArticleTimeout = def.ArticleTimeout
	}
	if cfg.TotalTimeout <= 0 {
		cfg.TotalTimeout = def.TotalTimeout
	}
	if cfg.MinRelevance <= 0 {
		cfg.MinRelevance = def.MinRelevance
	}

	enabled := make([]entity.SourceConfig, 0, len(sources))
	for _, src := range sources {
		if src.Enabled {
			enabled = append(enabled, src)
		}
	}

	return &Service{
		registry:  registry,
		sources:   enabled,
		scraper:   scraper,
		extractor: extractor,
		scorer:    scorer,
		cfg:       cfg,
		logger:    logger,
		grace:     registrationGrace,
	}
}

// StartSearch validates the query, registers a session, and starts the
// pipeline. The returned channel has capacity one so a slow consumer
// back-pressures the orchestrator; it is closed after the terminal frame.
// Validation errors are returned synchronously and create no session.
func (s *Service) StartSearch(ctx context.Context, query entity.Query) (string, <-chan Frame, error) {
	if err := query.Validate(); err != nil {
		return "", nil, err
	}

	session := s.registry.Create(query)
	frames := make(chan Frame, 1)
	go s.run(ctx, session, frames)
	return session.ID, frames, nil
}

// GetSession returns the session with the given id, or entity.ErrNotFound.
func (s *Service) GetSession(id string) (*Session, error) {
	return s.registry.Get(id)
}

// CancelSession requests cancellation of a running session.
func (s *Service) CancelSession(id string) error {
	return s.registry.MarkCancelled(id)
}

func (s *Service) run(ctx context.Context, session *Session, frames chan<- Frame) {
	start := time.Now()
	ctx = logging.ContextWithSessionID(ctx, session.ID)
	logger := logging.WithSessionID(ctx, s.logger)

	defer close(frames)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("search pipeline panicked", slog.Any("panic", r))
			s.finish(session, StatusFailed, start)
			s.emit(ctx, session, frames, NewErrorFrame(fmt.Sprintf("internal error: %v", r), false))
		}
	}()

	ctx, span := tracing.StartSpan(ctx, "search")
	defer span.End()

	if !s.emit(ctx, session, frames, NewSessionFrame(session.ID)) {
		s.finish(session, StatusCancelled, start)
		return
	}

	select {
	case <-time.After(s.grace):
	case <-ctx.Done():
		session.Cancel()
	}

	phrase := EnhancePhrase(session.Query.Phrase, session.Query.DateFrom, session.Query.DateTo)
	logger.Info("search started",
		slog.String("phrase", phrase),
		slog.Int("sources", len(s.sources)))

	articles := s.scrapePhase(ctx, session, frames, phrase, logger)

	if session.Cancelled() {
		s.emitCancelled(ctx, session, frames, start, logger)
		return
	}

	processed := s.extractPhase(ctx, session, frames, articles, logger)

	if session.Cancelled() {
		s.emitCancelled(ctx, session, frames, start, logger)
		return
	}

	elapsed := time.Since(start)
	total := session.EventCount()
	s.finish(session, StatusCompleted, start)
	s.emit(ctx, session, frames, CompleteFrame{
		EventType:         FrameComplete,
		Message:           fmt.Sprintf("Search completed. Found %d event(s).", total),
		TotalEvents:       total,
		ArticlesProcessed: processed,
		ProcessingTime:    elapsed.Seconds(),
	})
	logger.Info("search completed",
		slog.Int("total_events", total),
		slog.Int("articles_processed", processed),
		slog.Duration("elapsed", elapsed))
}

type sourceResult struct {
	name     string
	articles []entity.ArticleContent
}

// scrapePhase fans out over the enabled sources and merges their articles,
// deduplicating by URL across sources. One progress frame is emitted per
// completed source; all emission happens on the orchestrator goroutine so
// counter snapshots stay monotonic on the stream.
func (s *Service) scrapePhase(ctx context.Context, session *Session, frames chan<- Frame, phrase string, logger *slog.Logger) []entity.ArticleContent {
	ctx, span := tracing.StartSpan(ctx, "search.scrape")
	defer span.End()

	if len(s.sources) == 0 {
		logger.Warn("no enabled sources configured")
		return nil
	}

	results := make(chan sourceResult)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentScrapes)

	go func() {
		defer close(results)
		for _, src := range s.sources {
			src := src
			if session.Cancelled() {
				break
			}
			g.Go(func() error {
				if session.Cancelled() {
					return nil
				}
				sctx, cancel := context.WithTimeout(gctx, s.cfg.SourceTimeout)
				articles := s.scraper.ScrapeSource(sctx, src, phrase, session.Cancelled)
				cancel()
				select {
				case results <- sourceResult{name: src.Name, articles: articles}:
				case <-gctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	seen := make(map[string]bool)
	var all []entity.ArticleContent
	done := 0
	for res := range results {
		done++
		unique := 0
		for _, article := range res.articles {
			if seen[article.URL] {
				continue
			}
			seen[article.URL] = true
			all = append(all, article)
			unique++
		}
		session.addScraped(unique)
		logger.Debug("source scraped",
			slog.String("source", res.name),
			slog.Int("unique_articles", unique),
			slog.Int("duplicates", len(res.articles)-unique))
		if !s.progress(ctx, session, frames,
			fmt.Sprintf("Scraped %d article(s) from %s", unique, res.name),
			done, len(s.sources)) {
			break
		}
	}
	return all
}

type extractResult struct {
	article entity.ArticleContent
	event   *entity.EventData
	err     error
}

// extractPhase runs LLM extraction over the capped article list inside the
// total budget, scoring each event and streaming the survivors. The return
// value is how many articles were attempted, timed-out ones included.
func (s *Service) extractPhase(ctx context.Context, session *Session, frames chan<- Frame, articles []entity.ArticleContent, logger *slog.Logger) int {
	ctx, span := tracing.StartSpan(ctx, "search.extract")
	defer span.End()

	if len(articles) > s.cfg.MaxArticles {
		logger.Info("capping llm work",
			slog.Int("scraped", len(articles)),
			slog.Int("cap", s.cfg.MaxArticles))
		articles = articles[:s.cfg.MaxArticles]
	}
	if len(articles) == 0 {
		return 0
	}

	deadline := time.Now().Add(s.cfg.TotalTimeout)
	results := make(chan extractResult)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentExtractions)

	go func() {
		defer close(results)
		for _, article := range articles {
			article := article
			if session.Cancelled() {
				break
			}
			if !time.Now().Before(deadline) {
				logger.Warn("total llm budget exhausted, dropping remaining articles")
				break
			}
			g.Go(func() error {
				if session.Cancelled() {
					return nil
				}
				remaining := time.Until(deadline)
				if remaining <= 0 {
					return nil
				}
				timeout := s.cfg.ArticleTimeout
				if remaining < timeout {
					timeout = remaining
				}
				actx, cancel := context.WithTimeout(gctx, timeout)
				event, err := s.extractor.ExtractEvent(actx, article)
				cancel()
				if session.Cancelled() {
					// A result landing after cancellation is discarded
					return nil
				}
				select {
				case results <- extractResult{article: article, event: event, err: err}:
				case <-gctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	processed := 0
	total := len(articles)
	for res := range results {
		processed++
		if res.err != nil {
			logger.Warn("article extraction failed",
				slog.String("url", res.article.URL),
				slog.Any("error", res.err))
		}
		if res.event != nil {
			session.incExtracted()
			score := s.scorer.Score(session.Query, res.event)
			if score >= s.cfg.MinRelevance {
				res.event.RelevanceScore = score
				session.AddEvent(res.event)
				session.incMatched()
				metrics.RecordEventMatched()
				if !s.emit(ctx, session, frames, NewEventFrame(res.event)) {
					break
				}
			} else {
				logger.Debug("event below relevance floor",
					slog.Float64("score", score),
					slog.String("title", res.event.Title))
			}
		}
		if !s.progress(ctx, session, frames,
			fmt.Sprintf("Processed article %d/%d", processed, total),
			len(s.sources), len(s.sources)) {
			break
		}
	}
	return processed
}

// emit blocks until the consumer takes the frame. A dead consumer surfaces
// as context cancellation and is treated as an implicit cancel request.
func (s *Service) emit(ctx context.Context, session *Session, frames chan<- Frame, frame Frame) bool {
	select {
	case frames <- frame:
		session.touch()
		return true
	case <-ctx.Done():
		session.Cancel()
		return false
	}
}

func (s *Service) progress(ctx context.Context, session *Session, frames chan<- Frame, message string, sourcesDone, sourcesTotal int) bool {
	c := session.Counters()
	return s.emit(ctx, session, frames, ProgressFrame{
		EventType:         FrameProgress,
		Message:           message,
		ArticlesScraped:   c.ArticlesScraped,
		ArticlesExtracted: c.ArticlesExtracted,
		EventsMatched:     c.EventsMatched,
		SourcesDone:       sourcesDone,
		SourcesTotal:      sourcesTotal,
	})
}

func (s *Service) emitCancelled(ctx context.Context, session *Session, frames chan<- Frame, start time.Time, logger *slog.Logger) {
	total := session.EventCount()
	s.finish(session, StatusCancelled, start)
	s.emit(ctx, session, frames, CancelledFrame{
		EventType:   FrameCancelled,
		Message:     fmt.Sprintf("Search cancelled. Extracted %d event(s).", total),
		TotalEvents: total,
	})
	logger.Warn("search cancelled", slog.Int("total_events", total))
}

// finish records the terminal transition exactly once.
func (s *Service) finish(session *Session, status Status, start time.Time) {
	elapsed := time.Since(start)
	if !session.finish(status, elapsed.Seconds()) {
		return
	}
	metrics.RecordSearch(string(status), elapsed)
	slo.RecordSearchOutcome(status == StatusFailed, elapsed.Seconds())
}
