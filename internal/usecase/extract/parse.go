package extract

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Small local models produce almost-JSON with some regularity: markdown
// fences, prose around the object, trailing commas, and hedging like
// `"Kabul" or null`. repairJSON applies the known fixes before parsing.
var (
	quotedOrNull = regexp.MustCompile(`"[^"]*"\s+or\s+null`)
	nullOrQuoted = regexp.MustCompile(`null\s+or\s+"[^"]*"`)
	bareOrNull   = regexp.MustCompile(`:\s*\w+\s+or\s+null`)
)

var errNoJSON = errors.New("no JSON object in response")

// parseResponse extracts and repairs the JSON object from an LLM response.
func parseResponse(response string) (map[string]any, error) {
	response = strings.TrimSpace(response)

	// Strip markdown code fences
	if rest, ok := strings.CutPrefix(response, "```json"); ok {
		if body, _, found := strings.Cut(rest, "```"); found {
			response = strings.TrimSpace(body)
		} else {
			response = strings.TrimSpace(rest)
		}
	} else if rest, ok := strings.CutPrefix(response, "```"); ok {
		if body, _, found := strings.Cut(rest, "```"); found {
			response = strings.TrimSpace(body)
		} else {
			response = strings.TrimSpace(rest)
		}
	}

	// Cut surrounding prose down to the outermost braces
	if !strings.HasPrefix(response, "{") {
		start := strings.Index(response, "{")
		end := strings.LastIndex(response, "}")
		if start == -1 || end == -1 || end < start {
			return nil, errNoJSON
		}
		response = response[start : end+1]
	}

	response = strings.ReplaceAll(response, ",}", "}")
	response = strings.ReplaceAll(response, ",]", "]")
	response = quotedOrNull.ReplaceAllString(response, "null")
	response = nullOrQuoted.ReplaceAllString(response, "null")
	response = bareOrNull.ReplaceAllString(response, ": null")

	var data map[string]any
	if err := json.Unmarshal([]byte(response), &data); err == nil {
		return data, nil
	}

	// Second chance: some models annotate fields with // comments
	lines := strings.Split(response, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	cleaned := strings.Join(lines, "\n")

	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// asString coerces a parsed JSON value to a string; nil and non-strings
// yield "".
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asStringSlice coerces a parsed JSON value to a string slice. A bare string
// becomes a one-element slice; non-string list members are dropped.
func asStringSlice(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	default:
		return nil
	}
}

// asFloat coerces a parsed JSON value to a float64, returning ok=false for
// nil and unparseable values.
func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// asIntPtr coerces a casualty count to *int. Models sometimes emit numbers
// as digit strings; anything else (including negative counts) is treated as
// absent.
func asIntPtr(v any) *int {
	switch t := v.(type) {
	case float64:
		if t < 0 || math.IsInf(t, 0) || t != math.Trunc(t) {
			return nil
		}
		n := int(t)
		return &n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil || n < 0 {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// truthy mirrors loose boolean coercion for indicator fields: false, nil,
// empty strings and zero are all "not set".
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}

// joinedString handles location fields that come back as either a string or
// a list (cross-border events); lists are joined with "/".
func joinedString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		parts := asStringSlice(t)
		return strings.Join(parts, "/")
	default:
		return ""
	}
}
