// SPDX-License-Identifier: Apache-2.0

// Package report assembles the final human-facing report for a run from its
// persisted record. Assembly is pure: it never re-executes tests and never
// calls the analyzer, so a report for a given record is always the same.
package report

import (
	"time"

	"github.com/kusari-oss/apivet/internal/core/models"
	"github.com/kusari-oss/apivet/internal/core/score"
	"github.com/kusari-oss/apivet/internal/vet/analyzer"
	"github.com/kusari-oss/apivet/internal/vet/store"
)

// UnanalyzedRecommendation is appended when failures exist that the
// analyzer has not explained.
const UnanalyzedRecommendation = "Run failure analysis for detailed insights into failures."

// riskPlaceholder is shown for failures with no analyzer verdict.
const riskPlaceholder = string(models.RiskMedium)

// fixPlaceholder is shown where a fix suggestion would go for failures the
// analyzer has not seen.
const fixPlaceholder = "Run failure analysis first"

// FailureDetail is one explained failure in a report.
type FailureDetail struct {
	Endpoint       string                 `json:"endpoint" yaml:"endpoint"`
	Method         models.HTTPMethod      `json:"method" yaml:"method"`
	TestType       models.TestType        `json:"test_type" yaml:"test_type"`
	Payload        map[string]interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
	StatusCode     *int                   `json:"status_code" yaml:"status_code"`
	ResponseTimeMs float64                `json:"response_time_ms" yaml:"response_time_ms"`
	FailureReason  string                 `json:"failure_reason" yaml:"failure_reason"`
	RootCause      string                 `json:"root_cause" yaml:"root_cause"`
	RiskLevel      string                 `json:"risk_level" yaml:"risk_level"`
	FixSuggestion  string                 `json:"fix_suggestion" yaml:"fix_suggestion"`
}

// AIUsage records which external collaborators contributed to the run.
type AIUsage struct {
	PlannerUsed  bool `json:"planner_used" yaml:"planner_used"`
	AnalyzerUsed bool `json:"analyzer_used" yaml:"analyzer_used"`
}

// Report is the complete assembled report for one run.
type Report struct {
	RunID           string           `json:"run_id" yaml:"run_id"`
	PlanHash        string           `json:"plan_hash" yaml:"plan_hash"`
	Status          models.RunStatus `json:"status" yaml:"status"`
	StartedAt       time.Time        `json:"started_at" yaml:"started_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	TotalTests      int              `json:"total_tests" yaml:"total_tests"`
	Passed          int              `json:"passed" yaml:"passed"`
	Failed          int              `json:"failed" yaml:"failed"`
	Errors          int              `json:"errors" yaml:"errors"`
	EndpointsTested int              `json:"endpoints_tested" yaml:"endpoints_tested"`
	StabilityScore  float64          `json:"stability_score" yaml:"stability_score"`
	Health          score.Health     `json:"health" yaml:"health"`
	Recommendations []string         `json:"recommendations" yaml:"recommendations"`
	Failures        []FailureDetail  `json:"failures" yaml:"failures"`
	AIUsage         AIUsage          `json:"ai_usage" yaml:"ai_usage"`
}

// Build assembles the report for a persisted run record.
func Build(record *store.RunRecord) *Report {
	summary := record.Summary
	health := score.Band(summary.StabilityScore)

	recommendations := []string{score.Recommendation(health)}

	failures := make([]FailureDetail, 0, len(record.Failures))
	unanalyzed := false
	for i := range record.Failures {
		f := &record.Failures[i]
		detail := FailureDetail{
			Endpoint:       f.Endpoint,
			Method:         f.Method,
			TestType:       f.TestType,
			Payload:        f.Payload,
			StatusCode:     f.StatusCode,
			ResponseTimeMs: f.ResponseTimeMs,
			FailureReason:  f.FailureReason,
			RootCause:      f.RootCause,
			RiskLevel:      string(f.RiskLevel),
			FixSuggestion:  f.FixSuggestion,
		}
		if !f.Analyzed() {
			unanalyzed = true
			detail.RootCause = analyzer.NotAnalyzedPlaceholder
			detail.RiskLevel = riskPlaceholder
			detail.FixSuggestion = fixPlaceholder
		}
		failures = append(failures, detail)
	}

	if unanalyzed {
		recommendations = append(recommendations, UnanalyzedRecommendation)
	}

	return &Report{
		RunID:           summary.RunID,
		PlanHash:        summary.PlanHash,
		Status:          summary.Status,
		StartedAt:       summary.StartedAt,
		CompletedAt:     summary.CompletedAt,
		TotalTests:      summary.TotalTests,
		Passed:          summary.Passed,
		Failed:          summary.Failed,
		Errors:          summary.Errors,
		EndpointsTested: endpointsTested(record.Results),
		StabilityScore:  summary.StabilityScore,
		Health:          health,
		Recommendations: recommendations,
		Failures:        failures,
		AIUsage: AIUsage{
			PlannerUsed:  summary.PlannerUsed,
			AnalyzerUsed: summary.AnalyzerUsed,
		},
	}
}

// endpointsTested counts distinct endpoint paths across the run's results.
func endpointsTested(results []models.ExecutionResult) int {
	seen := make(map[string]struct{}, len(results))
	for i := range results {
		seen[results[i].TestCase.Endpoint] = struct{}{}
	}
	return len(seen)
}
