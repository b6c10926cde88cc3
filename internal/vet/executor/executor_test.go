// SPDX-License-Identifier: Apache-2.0

package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kusari-oss/apivet/internal/core/models"
	"github.com/kusari-oss/apivet/internal/core/sanitize"
	"github.com/kusari-oss/apivet/internal/vet/classify"
)

func newTestEngine() *Engine {
	return New(sanitize.New(1000, 500), classify.New())
}

func planFor(baseURL string, cases ...models.TestCase) *models.Plan {
	return &models.Plan{
		Hash:      "test-plan",
		BaseURL:   baseURL,
		TestCases: cases,
	}
}

func TestRunResultsAlignWithCaseOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"path": r.URL.Path})
	}))
	defer server.Close()

	cases := []models.TestCase{
		{Endpoint: "/a", Method: models.MethodGet, TestType: models.TestBoundaryValues},
		{Endpoint: "/b", Method: models.MethodGet, TestType: models.TestBoundaryValues},
		{Endpoint: "/c", Method: models.MethodGet, TestType: models.TestBoundaryValues},
	}

	results, err := newTestEngine().Run(context.Background(), planFor(server.URL, cases...), Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.Equal(t, cases[i].Endpoint, r.TestCase.Endpoint, "result %d", i)
		assert.Contains(t, r.ResponseBody, cases[i].Endpoint)
		assert.Equal(t, models.OutcomePassed, r.Outcome)
		require.NotNil(t, r.StatusCode)
		assert.Equal(t, http.StatusOK, *r.StatusCode)
		assert.GreaterOrEqual(t, r.ResponseTimeMs, 0.0)
	}
}

func TestRunClassifiesResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/boom":
			http.Error(w, `{"error": "crash"}`, http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id": 1}`))
		}
	}))
	defer server.Close()

	cases := []models.TestCase{
		{Endpoint: "/boom", Method: models.MethodGet, TestType: models.TestBoundaryValues},
		{Endpoint: "/ok", Method: models.MethodPost, TestType: models.TestMissingField,
			ExpectedFailure: true, Payload: map[string]interface{}{"name": nil}},
	}

	results, err := newTestEngine().Run(context.Background(), planFor(server.URL, cases...), Options{})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, models.OutcomeFailed, results[0].Outcome)
	assert.Equal(t, "5xx Server Error (500)", results[0].FailureReason)

	assert.Equal(t, models.OutcomeFailed, results[1].Outcome)
	assert.Equal(t, "Invalid success - bad input was accepted", results[1].FailureReason)
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak int64
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if current > peak {
			peak = current
		}
		mu.Unlock()
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var cases []models.TestCase
	for i := 0; i < 8; i++ {
		cases = append(cases, models.TestCase{
			Endpoint: "/load", Method: models.MethodGet, TestType: models.TestBoundaryValues,
		})
	}

	results, err := newTestEngine().Run(context.Background(), planFor(server.URL, cases...), Options{Concurrency: 2})
	require.NoError(t, err)
	require.Len(t, results, 8)

	mu.Lock()
	observed := peak
	mu.Unlock()
	assert.LessOrEqual(t, observed, int64(2))
}

func TestRunWallClockReflectsLimit(t *testing.T) {
	const delay = 100 * time.Millisecond

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var cases []models.TestCase
	for i := 0; i < 4; i++ {
		cases = append(cases, models.TestCase{
			Endpoint: "/slow", Method: models.MethodGet, TestType: models.TestBoundaryValues,
		})
	}

	start := time.Now()
	results, err := newTestEngine().Run(context.Background(), planFor(server.URL, cases...), Options{Concurrency: 2})
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, 4)

	// Four cases through two slots need two waves, so the run takes at
	// least 2*delay but well under the 4*delay a serial run would.
	assert.GreaterOrEqual(t, elapsed, 2*delay)
	assert.Less(t, elapsed, 7*delay/2)
}

func TestRunIsolatesTimeouts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			time.Sleep(300 * time.Millisecond)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cases := []models.TestCase{
		{Endpoint: "/slow", Method: models.MethodGet, TestType: models.TestTimeout},
		{Endpoint: "/fast", Method: models.MethodGet, TestType: models.TestBoundaryValues},
	}

	results, err := newTestEngine().Run(context.Background(), planFor(server.URL, cases...), Options{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, models.OutcomeTimeout, results[0].Outcome)
	assert.Equal(t, "Request timeout", results[0].FailureReason)
	assert.Nil(t, results[0].StatusCode)

	// The sibling case is untouched by the timeout.
	assert.Equal(t, models.OutcomePassed, results[1].Outcome)
}

func TestRunCapturesTransportErrors(t *testing.T) {
	// Nothing listens here; every case should come back as an error result.
	plan := planFor("http://127.0.0.1:1",
		models.TestCase{Endpoint: "/a", Method: models.MethodGet, TestType: models.TestBoundaryValues},
		models.TestCase{Endpoint: "/b", Method: models.MethodGet, TestType: models.TestBoundaryValues},
	)

	results, err := newTestEngine().Run(context.Background(), plan, Options{Timeout: time.Second})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		assert.Equal(t, models.OutcomeError, r.Outcome)
		assert.Contains(t, r.FailureReason, "Execution error")
		assert.Nil(t, r.StatusCode)
	}
}

func TestRunSendsPayloadAndHeaders(t *testing.T) {
	var gotContentType, gotCustom string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotCustom = r.Header.Get("X-Probe")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "rejected"}`))
	}))
	defer server.Close()

	tc := models.TestCase{
		Endpoint:        "/users",
		Method:          models.MethodPost,
		TestType:        models.TestWrongType,
		ExpectedFailure: true,
		Payload:         map[string]interface{}{"age": "not-a-number"},
		Headers:         map[string]string{"X-Probe": "wrong_type"},
	}

	results, err := newTestEngine().Run(context.Background(), planFor(server.URL, tc), Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "wrong_type", gotCustom)
	assert.Equal(t, "not-a-number", gotBody["age"])
	assert.Equal(t, models.OutcomePassed, results[0].Outcome)
}

func TestRunSanitizesBeforeStoring(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "session=abc")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"user": "alice", "password": "hunter2"}`))
	}))
	defer server.Close()

	tc := models.TestCase{Endpoint: "/login", Method: models.MethodGet, TestType: models.TestBoundaryValues}

	results, err := newTestEngine().Run(context.Background(), planFor(server.URL, tc), Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.NotContains(t, r.ResponseBody, "hunter2")
	assert.Contains(t, r.ResponseBody, sanitize.RedactionMarker)
	assert.Equal(t, "application/json", r.SafeHeaders["Content-Type"])
	assert.NotContains(t, r.SafeHeaders, "Set-Cookie")
}
