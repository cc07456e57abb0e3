// Package config loads the pipeline settings from environment variables and
// the source catalog from a YAML file. Everything is read once at startup;
// the resulting values are immutable thereafter.
package config

import (
	"log/slog"
	"math"
	"runtime"
	"time"

	pkgconfig "event-scraper/internal/pkg/config"
)

// Defaults for the recognized configuration keys.
const (
	DefaultOllamaTimeout        = 120 * time.Second
	DefaultOllamaTotalTimeout   = 480 * time.Second
	DefaultOllamaMaxArticles    = 5
	DefaultMaxConcurrentScrapes = 5
	DefaultMaxSearchResults     = 10
	DefaultScraperDelay         = 1 * time.Second
	DefaultScraperTimeout       = 30 * time.Second
	DefaultSessionTTL           = 24 * time.Hour
	DefaultMinRelevance         = 0.30
)

// QueryWeights holds the relevance scoring weights. They must sum to 1.0
// within ±0.01 or the defaults are used.
type QueryWeights struct {
	Text      float64
	Location  float64
	Date      float64
	EventType float64
}

// DefaultQueryWeights returns the standard weight split.
func DefaultQueryWeights() QueryWeights {
	return QueryWeights{Text: 0.40, Location: 0.25, Date: 0.20, EventType: 0.15}
}

// Validate checks that the weights sum to 1.0 within tolerance.
func (w QueryWeights) Validate() bool {
	sum := w.Text + w.Location + w.Date + w.EventType
	return math.Abs(sum-1.0) <= 0.01 &&
		w.Text >= 0 && w.Location >= 0 && w.Date >= 0 && w.EventType >= 0
}

// LLMSettings selects and configures the LLM providers.
type LLMSettings struct {
	// Provider is the primary provider name: "ollama", "claude" or "openai".
	Provider string

	// EnableFallback routes a failed primary call to the secondary provider.
	EnableFallback bool

	OllamaBaseURL string
	OllamaModel   string

	ClaudeAPIKey string
	ClaudeModel  string

	OpenAIAPIKey string
	OpenAIModel  string
}

// Settings is the full runtime configuration of the search pipeline.
type Settings struct {
	// Per-article LLM deadline.
	OllamaTimeout time.Duration

	// Per-search total LLM budget.
	OllamaTotalTimeout time.Duration

	// Hard cap on articles sent to the LLM per search.
	OllamaMaxArticles int

	// Fan-out for concurrent per-source scrapes.
	MaxConcurrentScrapes int

	// Bounded parallelism for the LLM phase.
	MaxConcurrentExtractions int

	// Maximum candidate links taken from one search-results page.
	MaxSearchResults int

	// Honor robots.txt when fetching.
	RespectRobots bool

	// Default per-host spacing when a source does not specify one.
	ScraperDelay time.Duration

	// Per-request HTTP timeout.
	ScraperTimeout time.Duration

	// Session eviction age.
	SessionTTL time.Duration

	// Relevance scoring weights.
	Weights QueryWeights

	// Drop floor for relevance scores.
	MinRelevance float64

	// Path to the YAML source catalog.
	SourcesPath string

	// Listen address for the HTTP server.
	Addr string

	LLM LLMSettings
}

// Load reads all settings from the environment, falling back to defaults
// on missing or malformed values.
func Load() Settings {
	weights := QueryWeights{
		Text:      pkgconfig.GetEnvFloat("WEIGHT_TEXT", 0.40),
		Location:  pkgconfig.GetEnvFloat("WEIGHT_LOCATION", 0.25),
		Date:      pkgconfig.GetEnvFloat("WEIGHT_DATE", 0.20),
		EventType: pkgconfig.GetEnvFloat("WEIGHT_EVENT_TYPE", 0.15),
	}
	if !weights.Validate() {
		slog.Warn("query weights do not sum to 1.0, using defaults",
			slog.Float64("text", weights.Text),
			slog.Float64("location", weights.Location),
			slog.Float64("date", weights.Date),
			slog.Float64("event_type", weights.EventType))
		weights = DefaultQueryWeights()
	}

	maxArticles := pkgconfig.GetEnvInt("OLLAMA_MAX_ARTICLES", DefaultOllamaMaxArticles)
	if maxArticles < 1 {
		slog.Warn("OLLAMA_MAX_ARTICLES must be at least 1, using default",
			slog.Int("value", maxArticles),
			slog.Int("default", DefaultOllamaMaxArticles))
		maxArticles = DefaultOllamaMaxArticles
	}

	extractions := maxArticles
	if cpus := runtime.NumCPU(); cpus < extractions {
		extractions = cpus
	}

	ollamaTotal := pkgconfig.GetEnvSeconds("OLLAMA_TOTAL_TIMEOUT", DefaultOllamaTotalTimeout)
	if err := pkgconfig.ValidatePositiveDuration(ollamaTotal); err != nil {
		slog.Warn("invalid OLLAMA_TOTAL_TIMEOUT, using default",
			slog.String("error", err.Error()),
			slog.Duration("default", DefaultOllamaTotalTimeout))
		ollamaTotal = DefaultOllamaTotalTimeout
	}

	// The per-article deadline must fit inside the total budget.
	ollamaTimeout := pkgconfig.GetEnvSeconds("OLLAMA_TIMEOUT", DefaultOllamaTimeout)
	if err := pkgconfig.ValidateDurationRange(ollamaTimeout, time.Second, ollamaTotal); err != nil {
		fallback := DefaultOllamaTimeout
		if fallback > ollamaTotal {
			fallback = ollamaTotal
		}
		slog.Warn("OLLAMA_TIMEOUT outside valid range, adjusting",
			slog.String("error", err.Error()),
			slog.Duration("adjusted", fallback))
		ollamaTimeout = fallback
	}

	scraperTimeout := pkgconfig.GetEnvSeconds("SCRAPER_TIMEOUT", DefaultScraperTimeout)
	if err := pkgconfig.ValidatePositiveDuration(scraperTimeout); err != nil {
		slog.Warn("invalid SCRAPER_TIMEOUT, using default",
			slog.String("error", err.Error()),
			slog.Duration("default", DefaultScraperTimeout))
		scraperTimeout = DefaultScraperTimeout
	}

	// Zero is a valid delay (no extra per-host spacing); negative is not.
	scraperDelay := pkgconfig.GetEnvSeconds("SCRAPER_DELAY", DefaultScraperDelay)
	if err := pkgconfig.ValidateNonNegativeDuration(scraperDelay); err != nil {
		slog.Warn("invalid SCRAPER_DELAY, using default",
			slog.String("error", err.Error()),
			slog.Duration("default", DefaultScraperDelay))
		scraperDelay = DefaultScraperDelay
	}

	return Settings{
		OllamaTimeout:            ollamaTimeout,
		OllamaTotalTimeout:       ollamaTotal,
		OllamaMaxArticles:        maxArticles,
		MaxConcurrentScrapes:     pkgconfig.GetEnvInt("MAX_CONCURRENT_SCRAPES", DefaultMaxConcurrentScrapes),
		MaxConcurrentExtractions: pkgconfig.GetEnvInt("MAX_CONCURRENT_EXTRACTIONS", extractions),
		MaxSearchResults:         pkgconfig.GetEnvInt("MAX_SEARCH_RESULTS", DefaultMaxSearchResults),
		RespectRobots:            pkgconfig.GetEnvBool("SCRAPER_RESPECT_ROBOTS", false),
		ScraperDelay:             scraperDelay,
		ScraperTimeout:           scraperTimeout,
		SessionTTL:               time.Duration(pkgconfig.GetEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		Weights:                  weights,
		MinRelevance:             pkgconfig.GetEnvFloat("MIN_RELEVANCE", DefaultMinRelevance),
		SourcesPath:              pkgconfig.GetEnvString("SOURCES_CONFIG_PATH", "config/sources.yaml"),
		Addr:                     pkgconfig.GetEnvString("ADDR", ":8000"),
		LLM: LLMSettings{
			Provider:       pkgconfig.GetEnvString("LLM_PROVIDER", "ollama"),
			EnableFallback: pkgconfig.GetEnvBool("ENABLE_LLM_FALLBACK", true),
			OllamaBaseURL:  pkgconfig.GetEnvString("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:    pkgconfig.GetEnvString("OLLAMA_MODEL", "qwen2.5:3b"),
			ClaudeAPIKey:   pkgconfig.GetEnvString("CLAUDE_API_KEY", ""),
			ClaudeModel:    pkgconfig.GetEnvString("CLAUDE_MODEL", "claude-3-5-haiku-20241022"),
			OpenAIAPIKey:   pkgconfig.GetEnvString("OPENAI_API_KEY", ""),
			OpenAIModel:    pkgconfig.GetEnvString("OPENAI_MODEL", "gpt-4o-mini"),
		},
	}
}
