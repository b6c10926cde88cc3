// SPDX-License-Identifier: Apache-2.0

// Package executor runs an accepted plan's test cases against the live
// target with bounded parallelism. Each case is attempted exactly once:
// probes may mutate target state, so a retry could invalidate the premise
// the case was built on.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kusari-oss/apivet/internal/core/models"
	"github.com/kusari-oss/apivet/internal/core/sanitize"
	"github.com/kusari-oss/apivet/internal/vet/classify"
	"github.com/kusari-oss/apivet/pkg/logging"
)

// DefaultConcurrency bounds in-flight requests when the caller does not.
const DefaultConcurrency = 5

// maxBodyRead caps how much of a response body is read off the wire.
const maxBodyRead = 1 << 20

// Options tune one run.
type Options struct {
	Concurrency int
	Timeout     time.Duration
}

// Engine orchestrates the concurrent execution of a plan.
type Engine struct {
	sanitizer  *sanitize.Sanitizer
	classifier *classify.Classifier
}

// New creates an engine wired to a sanitizer and classifier.
func New(sanitizer *sanitize.Sanitizer, classifier *classify.Classifier) *Engine {
	return &Engine{sanitizer: sanitizer, classifier: classifier}
}

// Run executes every test case of the plan and returns results index-aligned
// with plan.TestCases. Individual case failures (timeouts, transport errors)
// are captured in their own result and never abort sibling cases; Run itself
// only fails when the client resource cannot be set up at all.
func (e *Engine) Run(ctx context.Context, plan *models.Plan, opts Options) ([]models.ExecutionResult, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	if _, err := url.Parse(plan.BaseURL); err != nil {
		return nil, fmt.Errorf("error acquiring client for base URL %q: %w", plan.BaseURL, err)
	}

	// One client per run; released on every exit path.
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:    opts.Concurrency,
			MaxConnsPerHost: opts.Concurrency,
		},
	}
	defer client.CloseIdleConnections()

	logging.Debug("Executor", "running %d test cases against %s (concurrency %d)",
		len(plan.TestCases), plan.BaseURL, opts.Concurrency)

	results := make([]models.ExecutionResult, len(plan.TestCases))

	// Tasks run under a bounded-parallelism limiter; completion order is
	// unconstrained, but each task writes only its own index so the result
	// slice stays aligned with the submitted case order.
	g, runCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, tc := range plan.TestCases {
		i, tc := i, tc
		g.Go(func() error {
			results[i] = e.executeCase(runCtx, client, plan.BaseURL, tc, opts.Timeout)
			return nil
		})
	}
	// Tasks never return errors; failures live in their results.
	_ = g.Wait()

	return results, nil
}

// executeCase performs exactly one attempt of one test case.
func (e *Engine) executeCase(ctx context.Context, client *http.Client, baseURL string, tc models.TestCase, timeout time.Duration) models.ExecutionResult {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := e.buildRequest(reqCtx, baseURL, tc)
	if err != nil {
		return errorResult(tc, start, fmt.Sprintf("Execution error: %v", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return timeoutResult(tc, start)
		}
		return errorResult(tc, start, fmt.Sprintf("Execution error: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyRead))
	if err != nil {
		if isTimeout(err) {
			return timeoutResult(tc, start)
		}
		return errorResult(tc, start, fmt.Sprintf("Execution error: reading response: %v", err))
	}
	elapsed := elapsedMs(start)

	sanitized := e.sanitizer.Body(string(body))
	outcome, reason := e.classifier.Classify(resp.StatusCode, sanitized, tc)

	statusCode := resp.StatusCode
	return models.ExecutionResult{
		TestCase:       tc,
		StatusCode:     &statusCode,
		ResponseBody:   e.sanitizer.Snippet(sanitized),
		ResponseTimeMs: elapsed,
		SafeHeaders:    e.sanitizer.Headers(resp.Header),
		Outcome:        outcome,
		FailureReason:  reason,
	}
}

// buildRequest assembles the HTTP request for one case. A JSON content type
// is defaulted when a payload is present and the case did not set one.
func (e *Engine) buildRequest(ctx context.Context, baseURL string, tc models.TestCase) (*http.Request, error) {
	var body io.Reader
	hasPayload := len(tc.Payload) > 0
	if hasPayload {
		encoded, err := json.Marshal(tc.Payload)
		if err != nil {
			return nil, fmt.Errorf("encoding payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, string(tc.Method), baseURL+tc.Endpoint, body)
	if err != nil {
		return nil, err
	}

	for name, value := range tc.Headers {
		req.Header.Set(name, value)
	}
	if hasPayload && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func timeoutResult(tc models.TestCase, start time.Time) models.ExecutionResult {
	return models.ExecutionResult{
		TestCase:       tc,
		ResponseTimeMs: elapsedMs(start),
		Outcome:        models.OutcomeTimeout,
		FailureReason:  "Request timeout",
	}
}

func errorResult(tc models.TestCase, start time.Time, reason string) models.ExecutionResult {
	return models.ExecutionResult{
		TestCase:       tc,
		ResponseTimeMs: elapsedMs(start),
		Outcome:        models.OutcomeError,
		FailureReason:  reason,
	}
}

func elapsedMs(start time.Time) float64 {
	ms := float64(time.Since(start).Microseconds()) / 1000.0
	return math.Round(ms*100) / 100
}
