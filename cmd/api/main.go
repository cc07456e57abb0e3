// Command api runs the event search HTTP server: it loads the settings and
// the source catalog, wires the scraping and extraction pipeline to the
// configured LLM provider, and serves the streaming search endpoints.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"event-scraper/internal/config"
	"event-scraper/internal/domain/entity"
	"event-scraper/internal/infra/extractor"
	"event-scraper/internal/infra/httpfetch"
	"event-scraper/internal/infra/llm"
	"event-scraper/internal/infra/ner"
	"event-scraper/internal/infra/scraper"
	"event-scraper/internal/observability/logging"
	"event-scraper/internal/observability/tracing"
	"event-scraper/internal/usecase/extract"
	"event-scraper/internal/usecase/match"
	"event-scraper/internal/usecase/search"

	hsearch "event-scraper/internal/handler/http/search"
)

func main() {
	logger := initLogger()

	st := config.Load()

	sources, err := config.LoadSources(st.SourcesPath, logger)
	if err != nil {
		logger.Error("failed to load source catalog",
			slog.String("path", st.SourcesPath),
			slog.Any("error", err))
		os.Exit(1)
	}
	applyDefaultRateLimit(sources, st.ScraperDelay)

	shutdownTracing := initTracing()
	defer shutdownTracing()

	llmClient := buildLLMClient(st.LLM, logger)

	svc, cleaner := buildSearchService(st, sources, llmClient, logger)
	defer cleaner.Stop()

	handler := setupServer(svc, llmClient, logger)

	if err := runServer(handler, st.Addr, logger); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}

func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initTracing installs a tracer provider so pipeline spans are recorded.
// No exporter is configured; set one up here when a collector is available.
func initTracing() func() {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}
}

// applyDefaultRateLimit fills in the catalog-wide per-host spacing for
// sources that do not declare their own.
func applyDefaultRateLimit(sources []entity.SourceConfig, delay time.Duration) {
	for i := range sources {
		if sources[i].RateLimitSeconds <= 0 {
			sources[i].RateLimitSeconds = delay.Seconds()
		}
	}
}

// buildLLMClient constructs the primary provider named by the settings and,
// when fallback is enabled and a second provider has credentials, wraps the
// pair in a router that fails over on primary errors.
func buildLLMClient(cfg config.LLMSettings, logger *slog.Logger) llm.Client {
	primary := newProvider(cfg.Provider, cfg, logger)

	if !cfg.EnableFallback {
		return primary
	}

	fallback := newFallbackProvider(cfg, logger)
	if fallback == nil {
		return primary
	}

	logger.Info("llm fallback enabled",
		slog.String("primary", primary.Name()),
		slog.String("fallback", fallback.Name()))
	return llm.NewRouter(primary, fallback, logger)
}

func newProvider(name string, cfg config.LLMSettings, logger *slog.Logger) llm.Client {
	switch name {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Warn("claude selected without CLAUDE_API_KEY, falling back to ollama")
			return llm.NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel, logger)
		}
		return llm.NewClaude(cfg.ClaudeAPIKey, cfg.ClaudeModel, logger)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("openai selected without OPENAI_API_KEY, falling back to ollama")
			return llm.NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel, logger)
		}
		return llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	default:
		if name != "ollama" {
			logger.Warn("unknown LLM_PROVIDER, using ollama", slog.String("provider", name))
		}
		return llm.NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel, logger)
	}
}

// newFallbackProvider picks the first credentialed provider that is not the
// primary. Returns nil when nothing suitable is configured.
func newFallbackProvider(cfg config.LLMSettings, logger *slog.Logger) llm.Client {
	if cfg.Provider != "claude" && cfg.ClaudeAPIKey != "" {
		return llm.NewClaude(cfg.ClaudeAPIKey, cfg.ClaudeModel, logger)
	}
	if cfg.Provider != "openai" && cfg.OpenAIAPIKey != "" {
		return llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	}
	if cfg.Provider != "ollama" {
		return llm.NewOllama(cfg.OllamaBaseURL, cfg.OllamaModel, logger)
	}
	return nil
}

func buildSearchService(st config.Settings, sources []entity.SourceConfig, llmClient llm.Client, logger *slog.Logger) (*search.Service, *cron.Cron) {
	fetcher := httpfetch.New(httpfetch.Config{
		Timeout:       st.ScraperTimeout,
		RespectRobots: st.RespectRobots,
	}, logger)

	pageExtractor := extractor.New(logger)
	mgr := scraper.NewManager(fetcher, pageExtractor, st.MaxSearchResults, logger)

	eventExtractor := extract.New(llmClient, ner.NewHinter(), logger)

	matcher := match.New(match.Weights{
		Text:     st.Weights.Text,
		Location: st.Weights.Location,
		Date:     st.Weights.Date,
		Type:     st.Weights.EventType,
	}, st.MinRelevance)

	registry := search.NewRegistry()
	cleaner := registry.StartCleaner(st.SessionTTL, logger)

	svc := search.NewService(registry, sources, mgr, eventExtractor, matcher, search.Config{
		MaxConcurrentScrapes:     st.MaxConcurrentScrapes,
		MaxConcurrentExtractions: st.MaxConcurrentExtractions,
		SourceTimeout:            st.ScraperTimeout * 4,
		MaxArticles:              st.OllamaMaxArticles,
		ArticleTimeout:           st.OllamaTimeout,
		TotalTimeout:             st.OllamaTotalTimeout,
		MinRelevance:             st.MinRelevance,
	}, logger)

	return svc, cleaner
}

func setupServer(svc *search.Service, llmClient llm.Client, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	hsearch.Register(mux, svc, llmClient, logger)
	mux.Handle("GET /metrics", promhttp.Handler())

	return tracing.Middleware(mux)
}

func runServer(handler http.Handler, addr string, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
