// SPDX-License-Identifier: Apache-2.0

package analyzer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kusari-oss/apivet/internal/vet/analyzer"
)

func TestHTTPAnalyzer(t *testing.T) {
	status := 500
	failure := analyzer.FailureContext{
		Endpoint:      "/users",
		TestType:      "missing_field",
		StatusCode:    &status,
		FailureReason: "5xx Server Error (500)",
	}

	t.Run("PostsContextAndDecodesVerdict", func(t *testing.T) {
		var received analyzer.FailureContext
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_ = json.NewEncoder(w).Encode(analyzer.Analysis{
				RootCause:     "Unhandled nil dereference",
				RiskLevel:     "high",
				FixSuggestion: "Guard the lookup",
			})
		}))
		defer server.Close()

		analysis, err := analyzer.NewHTTPAnalyzer(server.URL).Analyze(context.Background(), failure)
		require.NoError(t, err)
		assert.Equal(t, "/users", received.Endpoint)
		assert.Equal(t, "Unhandled nil dereference", analysis.RootCause)
		assert.Equal(t, "high", analysis.RiskLevel)
	})

	t.Run("CoercesUnknownRiskLevels", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(analyzer.Analysis{
				RootCause: "cause",
				RiskLevel: "catastrophic",
			})
		}))
		defer server.Close()

		analysis, err := analyzer.NewHTTPAnalyzer(server.URL).Analyze(context.Background(), failure)
		require.NoError(t, err)
		assert.Equal(t, "medium", analysis.RiskLevel)
	})

	t.Run("NonOKStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := analyzer.NewHTTPAnalyzer(server.URL).Analyze(context.Background(), failure)
		assert.ErrorContains(t, err, "analyzer returned status 503")
	})

	t.Run("UnreachableEndpoint", func(t *testing.T) {
		_, err := analyzer.NewHTTPAnalyzer("http://127.0.0.1:1").Analyze(context.Background(), failure)
		assert.Error(t, err)
	})
}
