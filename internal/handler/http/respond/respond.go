// Package respond provides helpers for writing JSON HTTP responses, with
// error sanitization so internal details never reach clients.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes a JSON response with the given status code and body.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent; all we can do is log
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error response with the given status code and message.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// safeFragments mark error messages that are fit for clients: validation
// failures and lookups, not internals.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"already",
	"must",
	"cannot be",
	"too long",
	"too short",
	"unknown",
}

// SafeError returns validation-style errors verbatim and masks everything
// else as an internal error, logging the original.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := strings.ToLower(err.Error())
	safe := false
	for _, fragment := range safeFragments {
		if strings.Contains(msg, fragment) {
			safe = true
			break
		}
	}
	if code >= http.StatusInternalServerError {
		safe = false
	}

	if safe {
		Error(w, code, err)
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.Any("error", err))
	JSON(w, code, map[string]string{"error": "internal server error"})
}
