// SPDX-License-Identifier: Apache-2.0

// Package vet wires the gate, engine, score calculator and store into the
// operations the CLI exposes.
package vet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kusari-oss/apivet/internal/core/models"
	"github.com/kusari-oss/apivet/internal/core/score"
	"github.com/kusari-oss/apivet/internal/vet/executor"
	"github.com/kusari-oss/apivet/internal/vet/store"
	"github.com/kusari-oss/apivet/pkg/logging"
)

// ExecuteRun runs a stored plan against its target and persists the
// complete run record. Results already computed are committed even when a
// later persistence step fails; in that case the summary is marked ERROR
// and the error is returned alongside the record.
func ExecuteRun(ctx context.Context, st *store.Store, engine *executor.Engine, planHash string, opts executor.Options) (*store.RunRecord, error) {
	plan, err := st.GetPlan(planHash)
	if err != nil {
		return nil, fmt.Errorf("error loading plan %s: %w", planHash, err)
	}

	summary := models.RunSummary{
		RunID:       uuid.New().String(),
		PlanHash:    plan.Hash,
		Status:      models.RunRunning,
		TotalTests:  len(plan.TestCases),
		PlannerUsed: true,
		StartedAt:   time.Now().UTC(),
	}

	results, err := engine.Run(ctx, plan, opts)
	if err != nil {
		return nil, fmt.Errorf("error executing plan %s: %w", planHash, err)
	}

	for i := range results {
		switch results[i].Outcome {
		case models.OutcomePassed:
			summary.Passed++
		case models.OutcomeFailed:
			summary.Failed++
		default:
			summary.Errors++
		}
	}

	stability, breakdown := score.Calculate(results)
	summary.StabilityScore = stability
	summary.Status = models.RunCompleted
	completed := time.Now().UTC()
	summary.CompletedAt = &completed

	record := &store.RunRecord{
		Summary:  summary,
		Results:  results,
		Failures: failureRecords(summary.RunID, results),
	}

	if err := st.SaveRun(record); err != nil {
		// Best-effort, non-transactional: the run is marked ERROR but the
		// computed results stay on the returned record.
		record.Summary.Status = models.RunError
		return record, fmt.Errorf("error persisting run %s: %w", summary.RunID, err)
	}

	logging.Info("Run", "run %s completed: %d passed, %d failed, %d errors, score %.2f (5xx=%d invalid=%d timeouts=%d)",
		summary.RunID, summary.Passed, summary.Failed, summary.Errors, stability,
		breakdown.ServerErrors, breakdown.InvalidSuccesses, breakdown.Timeouts)

	return record, nil
}

// FindRecentRun returns the newest completed run of a plan started within
// the reuse window, or nil when none qualifies.
func FindRecentRun(st *store.Store, planHash string, window time.Duration) (*store.RunRecord, error) {
	records, err := st.ListRunsForPlan(planHash)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().Add(-window)
	for i := range records {
		if records[i].Summary.Status == models.RunCompleted && records[i].Summary.StartedAt.After(cutoff) {
			return &records[i], nil
		}
	}
	return nil, nil
}

// failureRecords extracts persisted failure records from every non-passed
// result, preserving result order.
func failureRecords(runID string, results []models.ExecutionResult) []models.FailureRecord {
	var failures []models.FailureRecord
	for i := range results {
		r := &results[i]
		if r.Outcome == models.OutcomePassed {
			continue
		}

		reason := r.FailureReason
		if reason == "" {
			reason = "Unknown failure"
		}

		failures = append(failures, models.FailureRecord{
			RunID:           runID,
			Endpoint:        r.TestCase.Endpoint,
			Method:          r.TestCase.Method,
			TestType:        r.TestCase.TestType,
			Payload:         r.TestCase.Payload,
			ResponseSnippet: r.ResponseBody,
			StatusCode:      r.StatusCode,
			ResponseTimeMs:  r.ResponseTimeMs,
			FailureReason:   reason,
		})
	}
	return failures
}
