// SPDX-License-Identifier: Apache-2.0

// Package sanitize redacts sensitive material from captured target responses
// before anything is logged, classified or persisted.
package sanitize

import (
	"encoding/json"
	"strings"
)

// RedactionMarker replaces every sensitive value in a sanitized body.
const RedactionMarker = "***REDACTED***"

// sensitiveKeywords flags any JSON key that contains one of these,
// case-insensitively.
var sensitiveKeywords = []string{
	"password", "token", "secret", "key", "authorization",
	"credit_card", "ssn", "phone", "email", "address",
}

// safeHeaderNames is the allow-list of response headers retained on results.
var safeHeaderNames = []string{
	"content-type", "content-length", "server", "date",
	"cache-control", "x-request-id", "x-response-time",
}

// Sanitizer redacts response bodies and filters headers. Caps are measured
// in characters of the raw body.
type Sanitizer struct {
	bodyCap    int
	snippetCap int
}

// New creates a sanitizer with the given caps. Non-positive caps fall back
// to 1000 (body) and 500 (snippet).
func New(bodyCap, snippetCap int) *Sanitizer {
	if bodyCap <= 0 {
		bodyCap = 1000
	}
	if snippetCap <= 0 {
		snippetCap = 500
	}
	return &Sanitizer{bodyCap: bodyCap, snippetCap: snippetCap}
}

// Body sanitizes a raw response body. Structured bodies are walked
// recursively and re-serialized with sensitive values redacted; anything
// that fails to parse is returned raw, truncated to the body cap.
func (s *Sanitizer) Body(raw string) string {
	if raw == "" {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return truncate(raw, s.bodyCap)
	}

	redacted := redactValue(data)
	out, err := json.MarshalIndent(redacted, "", "  ")
	if err != nil {
		return truncate(raw, s.bodyCap)
	}

	return string(out)
}

// Snippet returns the storage view of a sanitized body, further truncated
// to the snippet cap.
func (s *Sanitizer) Snippet(sanitizedBody string) string {
	return truncate(sanitizedBody, s.snippetCap)
}

// Headers retains only allow-listed headers, preserving their original
// name casing. Everything else is dropped.
func (s *Sanitizer) Headers(headers map[string][]string) map[string]string {
	safe := make(map[string]string)
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		lower := strings.ToLower(name)
		for _, allowed := range safeHeaderNames {
			if lower == allowed {
				safe[name] = values[0]
				break
			}
		}
	}
	return safe
}

// redactValue walks structured data, replacing values of sensitive keys
// while preserving the overall structure.
func redactValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for key, inner := range val {
			if isSensitiveKey(key) {
				val[key] = RedactionMarker
			} else {
				val[key] = redactValue(inner)
			}
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = redactValue(item)
		}
		return val
	default:
		return v
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
