package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"net"

	"event-scraper/internal/resilience/retry"
)

// ErrorKind classifies fetch failures for logging and metrics labels.
type ErrorKind string

const (
	ErrKindTimeout          ErrorKind = "timeout"
	ErrKindNetwork          ErrorKind = "network"
	ErrKindHTTPClient       ErrorKind = "http_4xx"
	ErrKindHTTPServer       ErrorKind = "http_5xx"
	ErrKindRobotsDisallowed ErrorKind = "disallowed_by_robots"
	ErrKindCancelled        ErrorKind = "cancelled"
	ErrKindInvalidURL       ErrorKind = "invalid_url"
)

// FetchError wraps a failed fetch with its classification and the URL involved.
type FetchError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: %s (status %d): %v", e.URL, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying error so retry.IsRetryable can inspect it.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// classifyError wraps an error from the transport or status handling
// into a FetchError with the right kind.
func classifyError(rawURL string, err error) *FetchError {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr
	}

	kind := ErrKindNetwork
	statusCode := 0

	switch {
	case errors.Is(err, context.Canceled):
		kind = ErrKindCancelled
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrKindTimeout
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = ErrKindTimeout
		}
		var httpErr *retry.HTTPError
		if errors.As(err, &httpErr) {
			statusCode = httpErr.StatusCode
			if httpErr.StatusCode >= 500 {
				kind = ErrKindHTTPServer
			} else {
				kind = ErrKindHTTPClient
			}
		}
	}

	return &FetchError{
		Kind:       kind,
		URL:        rawURL,
		StatusCode: statusCode,
		Err:        err,
	}
}
