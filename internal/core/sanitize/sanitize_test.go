// SPDX-License-Identifier: Apache-2.0

package sanitize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBody(t *testing.T) {
	s := New(1000, 500)

	t.Run("RedactsTopLevelSensitiveKeys", func(t *testing.T) {
		out := s.Body(`{"username": "alice", "password": "hunter2"}`)

		var parsed map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &parsed))
		assert.Equal(t, "alice", parsed["username"])
		assert.Equal(t, RedactionMarker, parsed["password"])
	})

	t.Run("RedactsNestedAndListedValues", func(t *testing.T) {
		body := `{
  "users": [
    {"name": "bob", "api_key": "sk-123", "profile": {"email": "bob@example.com"}}
  ]
}`
		out := s.Body(body)

		assert.NotContains(t, out, "sk-123")
		assert.NotContains(t, out, "bob@example.com")
		assert.Contains(t, out, "bob")
		assert.Contains(t, out, RedactionMarker)
	})

	t.Run("KeywordMatchIsCaseInsensitive", func(t *testing.T) {
		out := s.Body(`{"Authorization": "Bearer abc", "AccessToken": "xyz"}`)

		assert.NotContains(t, out, "Bearer abc")
		assert.NotContains(t, out, "xyz")
	})

	t.Run("NonJSONBodyIsTruncatedRaw", func(t *testing.T) {
		small := New(20, 10)
		raw := strings.Repeat("x", 50)

		out := small.Body(raw)
		assert.Equal(t, strings.Repeat("x", 20), out)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		assert.Equal(t, "", s.Body(""))
	})
}

func TestSnippet(t *testing.T) {
	s := New(1000, 10)

	assert.Equal(t, "short", s.Snippet("short"))
	assert.Equal(t, "0123456789", s.Snippet("0123456789abcdef"))
}

func TestHeaders(t *testing.T) {
	s := New(1000, 500)

	headers := map[string][]string{
		"Content-Type":  {"application/json"},
		"Server":        {"nginx"},
		"Set-Cookie":    {"session=abc"},
		"Authorization": {"Bearer token"},
		"X-Request-Id":  {"req-1"},
	}

	safe := s.Headers(headers)

	assert.Equal(t, "application/json", safe["Content-Type"])
	assert.Equal(t, "nginx", safe["Server"])
	assert.Equal(t, "req-1", safe["X-Request-Id"])
	assert.NotContains(t, safe, "Set-Cookie")
	assert.NotContains(t, safe, "Authorization")
}

func TestNewCapFallbacks(t *testing.T) {
	s := New(0, -5)

	long := strings.Repeat("a", 2000)
	assert.Len(t, s.Body(long), 1000)
	assert.Len(t, s.Snippet(long), 500)
}
