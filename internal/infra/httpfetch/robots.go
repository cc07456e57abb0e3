package httpfetch

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	robotsCacheTTL      = time.Hour
	robotsNegativeTTL   = time.Minute
	robotsMaxBytes      = 512 * 1024
	robotsFetchDeadline = 10 * time.Second
)

// robotsRule is a single Allow or Disallow directive.
type robotsRule struct {
	allow bool
	path  string
}

// robotsRules holds the directives applying to our user agent for one host.
type robotsRules struct {
	rules      []robotsRule
	crawlDelay time.Duration
}

// Allowed reports whether the path may be fetched. The longest matching
// rule wins; Allow breaks ties, and no match means allowed.
func (r *robotsRules) Allowed(path string) bool {
	if r == nil || len(r.rules) == 0 {
		return true
	}
	if path == "" {
		path = "/"
	}

	bestLen := -1
	bestAllow := true
	for _, rule := range r.rules {
		if rule.path == "" {
			// "Disallow:" with an empty value allows everything
			continue
		}
		if !strings.HasPrefix(path, rule.path) {
			continue
		}
		n := len(rule.path)
		if n > bestLen || (n == bestLen && rule.allow && !bestAllow) {
			bestLen = n
			bestAllow = rule.allow
		}
	}
	return bestAllow
}

type robotsEntry struct {
	rules   *robotsRules
	fetched time.Time
	ttl     time.Duration
}

// robotsCache caches parsed robots.txt rules per host.
// Unreachable or malformed robots files are treated as fully permissive.
type robotsCache struct {
	client *http.Client

	mu      sync.Mutex
	entries map[string]*robotsEntry
}

func newRobotsCache(client *http.Client) *robotsCache {
	return &robotsCache{
		client:  client,
		entries: make(map[string]*robotsEntry),
	}
}

// Rules returns the robots rules for the URL's host, fetching and caching
// robots.txt on first use.
func (c *robotsCache) Rules(ctx context.Context, u *url.URL) *robotsRules {
	host := u.Scheme + "://" + u.Host

	c.mu.Lock()
	entry, ok := c.entries[host]
	if ok && time.Since(entry.fetched) < entry.ttl {
		c.mu.Unlock()
		return entry.rules
	}
	c.mu.Unlock()

	rules, ok := c.fetch(ctx, host)
	ttl := robotsCacheTTL
	if !ok {
		ttl = robotsNegativeTTL
	}

	c.mu.Lock()
	c.entries[host] = &robotsEntry{rules: rules, fetched: time.Now(), ttl: ttl}
	c.mu.Unlock()

	return rules
}

func (c *robotsCache) fetch(ctx context.Context, host string) (*robotsRules, bool) {
	ctx, cancel := context.WithTimeout(ctx, robotsFetchDeadline)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/robots.txt", nil)
	if err != nil {
		return nil, false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 4xx means no robots file: everything is allowed.
		// Treat server errors as permissive too, but cache them briefly.
		return nil, resp.StatusCode < 500
	}

	rules := parseRobots(io.LimitReader(resp.Body, robotsMaxBytes))
	return rules, true
}

// parseRobots extracts the directives for User-agent: * groups.
func parseRobots(r io.Reader) *robotsRules {
	rules := &robotsRules{}
	scanner := bufio.NewScanner(r)

	inGroup := false
	sawAgentLine := false

	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			// Consecutive user-agent lines form one group header.
			if sawAgentLine {
				inGroup = inGroup || value == "*"
			} else {
				inGroup = value == "*"
			}
			sawAgentLine = true
		case "allow", "disallow":
			sawAgentLine = false
			if inGroup {
				rules.rules = append(rules.rules, robotsRule{
					allow: key == "allow",
					path:  value,
				})
			}
		case "crawl-delay":
			sawAgentLine = false
			if inGroup {
				if secs, err := strconv.ParseFloat(value, 64); err == nil && secs > 0 {
					rules.crawlDelay = time.Duration(secs * float64(time.Second))
				}
			}
		default:
			sawAgentLine = false
		}
	}

	return rules
}
