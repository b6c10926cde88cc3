// SPDX-License-Identifier: Apache-2.0

// Package analyzer talks to the external failure-analysis collaborator.
// The collaborator is untrusted and optional: its output is coerced into
// the closed risk enum, and its unavailability never blocks a report.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kusari-oss/apivet/internal/core/models"
)

// NotAnalyzedPlaceholder is shown in reports for failures the analyzer
// has not seen yet.
const NotAnalyzedPlaceholder = "Not analyzed yet"

// FailureContext is the payload sent to the analyzer for one failure.
type FailureContext struct {
	Endpoint        string                 `json:"endpoint"`
	TestType        string                 `json:"test_type"`
	Payload         map[string]interface{} `json:"payload,omitempty"`
	ResponseSnippet string                 `json:"response_snippet"`
	StatusCode      *int                   `json:"status_code"`
	FailureReason   string                 `json:"failure_reason"`
}

// Analysis is the collaborator's verdict for one failure.
type Analysis struct {
	RootCause     string `json:"root_cause"`
	RiskLevel     string `json:"risk_level"`
	FixSuggestion string `json:"fix_suggestion"`
}

// Analyzer produces an analysis for one failure.
type Analyzer interface {
	Analyze(ctx context.Context, failure FailureContext) (*Analysis, error)
}

// HTTPAnalyzer posts failure contexts to a JSON endpoint.
type HTTPAnalyzer struct {
	url    string
	client *http.Client
}

// NewHTTPAnalyzer creates an analyzer client for the given endpoint.
func NewHTTPAnalyzer(url string) *HTTPAnalyzer {
	return &HTTPAnalyzer{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Analyze sends one failure to the collaborator and decodes its verdict.
func (a *HTTPAnalyzer) Analyze(ctx context.Context, failure FailureContext) (*Analysis, error) {
	body, err := json.Marshal(failure)
	if err != nil {
		return nil, fmt.Errorf("error encoding failure context: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error building analyzer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling analyzer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyzer returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("error reading analyzer response: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("error decoding analyzer response: %w", err)
	}

	// Out-of-enum risk levels collapse to medium.
	analysis.RiskLevel = string(models.CoerceRiskLevel(analysis.RiskLevel))

	return &analysis, nil
}
