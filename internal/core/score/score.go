// SPDX-License-Identifier: Apache-2.0

// Package score reduces a completed run's results to a bounded stability
// metric. The arithmetic is fixed so repeated scoring of the same results
// always yields the same number.
package score

import (
	"math"
	"strings"

	"github.com/kusari-oss/apivet/internal/core/models"
)

// Penalty weights per counted result.
const (
	penalty5xx            = 5
	penaltyInvalidSuccess = 3
	penaltyTimeout        = 2
)

// Breakdown carries the mutually exclusive counters behind a score.
type Breakdown struct {
	ServerErrors     int `json:"server_errors" yaml:"server_errors"`
	InvalidSuccesses int `json:"invalid_successes" yaml:"invalid_successes"`
	Timeouts         int `json:"timeouts" yaml:"timeouts"`
}

// Calculate scores a run's results on the 0-100 stability scale.
// Each result feeds at most one counter, in strict precedence:
// 5xx, then invalid success, then timeout. Results matching none of the
// three contribute nothing.
func Calculate(results []models.ExecutionResult) (float64, Breakdown) {
	var b Breakdown

	for i := range results {
		r := &results[i]
		reason := strings.ToLower(r.FailureReason)

		switch {
		case is5xx(r, reason):
			b.ServerErrors++
		case isInvalidSuccess(reason):
			b.InvalidSuccesses++
		case isTimeout(r, reason):
			b.Timeouts++
		}
	}

	score := 100.0 -
		float64(penalty5xx*b.ServerErrors) -
		float64(penaltyInvalidSuccess*b.InvalidSuccesses) -
		float64(penaltyTimeout*b.Timeouts)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return math.Round(score*100) / 100, b
}

func is5xx(r *models.ExecutionResult, reason string) bool {
	if r.StatusCode != nil && *r.StatusCode >= 500 {
		return true
	}
	return strings.Contains(reason, "5xx") || strings.Contains(reason, "server error")
}

func isInvalidSuccess(reason string) bool {
	return strings.Contains(reason, "invalid success") ||
		strings.Contains(reason, "bad input was accepted")
}

func isTimeout(r *models.ExecutionResult, reason string) bool {
	return r.Outcome == models.OutcomeTimeout || strings.Contains(reason, "timeout")
}
