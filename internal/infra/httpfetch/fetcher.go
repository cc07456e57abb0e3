// Package httpfetch provides a polite HTTP client for pulling pages and feeds
// from news sources. Every request goes through per-host rate limiting,
// optional robots.txt checks, retry with exponential backoff, and a circuit
// breaker shared across all hosts.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"event-scraper/internal/domain/entity"
	"event-scraper/internal/observability/metrics"
	"event-scraper/internal/resilience/circuitbreaker"
	"event-scraper/internal/resilience/retry"
)

const (
	// DefaultUserAgent is a browser-like agent string. Some news sites block
	// obvious bot agents outright.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	defaultMaxBodyBytes = 10 * 1024 * 1024
	maxRedirects        = 10
)

// Config controls fetcher-wide behavior.
type Config struct {
	// Timeout bounds a single request including body read.
	Timeout time.Duration

	// RespectRobots enables robots.txt checks and Crawl-delay honoring.
	RespectRobots bool

	// MaxBodyBytes caps response body size. Zero means the default 10 MiB.
	MaxBodyBytes int64
}

// Options carries per-request overrides, typically derived from the
// source catalog entry being fetched.
type Options struct {
	// RateLimit is the minimum spacing between requests to the same host.
	RateLimit time.Duration

	// UserAgent overrides the default agent string when non-empty.
	UserAgent string

	// Headers are extra request headers.
	Headers map[string]string
}

// Fetcher performs rate-limited, retried HTTP GETs.
type Fetcher struct {
	client  *http.Client
	robots  *robotsCache
	breaker *circuitbreaker.CircuitBreaker
	cfg     Config
	logger  *slog.Logger

	// validate screens URLs before fetching; swapped out in tests.
	validate func(string) error
	retryCfg retry.Config

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a Fetcher. The redirect policy re-validates every hop so a
// page cannot bounce the client into private address space.
func New(cfg Config, logger *slog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}

	f := &Fetcher{
		cfg:      cfg,
		logger:   logger,
		breaker:  circuitbreaker.New(circuitbreaker.WebScraperConfig()),
		validate: entity.ValidateURL,
		retryCfg: retry.WebScraperConfig(),
		limiters: make(map[string]*rate.Limiter),
	}

	f.client = &http.Client{
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return f.validate(req.URL.String())
		},
	}
	f.robots = newRobotsCache(f.client)

	return f
}

// Fetch retrieves the URL body. It blocks on the host's rate limiter before
// each attempt, so retries also respect the per-host spacing.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts Options) ([]byte, error) {
	if err := f.validate(rawURL); err != nil {
		return nil, &FetchError{Kind: ErrKindInvalidURL, URL: rawURL, Err: err}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{Kind: ErrKindInvalidURL, URL: rawURL, Err: err}
	}

	spacing := opts.RateLimit
	if f.cfg.RespectRobots {
		rules := f.robots.Rules(ctx, u)
		if !rules.Allowed(u.Path) {
			return nil, &FetchError{
				Kind: ErrKindRobotsDisallowed,
				URL:  rawURL,
				Err:  errors.New("path disallowed by robots.txt"),
			}
		}
		if rules.crawlDelay > spacing {
			spacing = rules.crawlDelay
		}
	}

	limiter := f.limiterFor(u.Host, spacing)

	var body []byte
	attempts := 0
	start := time.Now()
	err = retry.WithBackoff(ctx, f.retryCfg, func() error {
		attempts++
		if attempts > 1 {
			metrics.RecordFetchRetry()
		}
		if waitErr := limiter.Wait(ctx); waitErr != nil {
			return waitErr
		}

		result, execErr := f.breaker.Execute(func() (interface{}, error) {
			return f.doRequest(ctx, rawURL, opts)
		})
		if execErr != nil {
			if errors.Is(execErr, gobreaker.ErrOpenState) {
				f.logger.Warn("fetch skipped, circuit open",
					slog.String("host", u.Host))
			}
			return execErr
		}

		body = result.([]byte)
		return nil
	})

	duration := time.Since(start)
	if err != nil {
		fetchErr := classifyError(rawURL, err)
		metrics.RecordFetch(string(fetchErr.Kind), duration)
		return nil, fetchErr
	}

	metrics.RecordFetch("success", duration)
	return body, nil
}

// limiterFor returns the host's limiter, creating it on first use and
// tightening its rate if a slower spacing is requested later.
func (f *Fetcher) limiterFor(host string, spacing time.Duration) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	limiter, ok := f.limiters[host]
	if !ok {
		limit := rate.Inf
		if spacing > 0 {
			limit = rate.Every(spacing)
		}
		limiter = rate.NewLimiter(limit, 1)
		f.limiters[host] = limiter
		return limiter
	}

	if spacing > 0 {
		want := rate.Every(spacing)
		if want < limiter.Limit() {
			limiter.SetLimit(want)
		}
	}
	return limiter
}

func (f *Fetcher) doRequest(ctx context.Context, rawURL string, opts Options) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	agent := opts.UserAgent
	if agent == "" {
		agent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", agent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// parseRetryAfter handles the delta-seconds form of the Retry-After header.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
