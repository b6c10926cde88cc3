// SPDX-License-Identifier: Apache-2.0

package analyzer

import (
	"context"

	"github.com/kusari-oss/apivet/internal/core/models"
	"github.com/kusari-oss/apivet/internal/vet/store"
	"github.com/kusari-oss/apivet/pkg/logging"
)

// EnrichRun enriches a run's failure records with analyzer output, at most
// once per run. When the run's analyzer flag is already set the stored
// record is returned untouched and the collaborator is never re-invoked.
// A collaborator that is entirely unreachable leaves the flag unset so a
// later attempt can still enrich; reports show placeholders meanwhile.
func EnrichRun(ctx context.Context, st *store.Store, a Analyzer, runID string) (*store.RunRecord, error) {
	record, err := st.GetRun(runID)
	if err != nil {
		return nil, err
	}

	if record.Summary.AnalyzerUsed {
		logging.Debug("Analyzer", "run %s already analyzed, returning stored analyses", runID)
		return record, nil
	}
	if len(record.Failures) == 0 {
		return record, nil
	}

	analyzed := 0
	attempted := 0
	for i := range record.Failures {
		failure := &record.Failures[i]
		if failure.Analyzed() {
			continue
		}
		attempted++

		analysis, err := a.Analyze(ctx, FailureContext{
			Endpoint:        failure.Endpoint,
			TestType:        string(failure.TestType),
			Payload:         failure.Payload,
			ResponseSnippet: failure.ResponseSnippet,
			StatusCode:      failure.StatusCode,
			FailureReason:   failure.FailureReason,
		})
		if err != nil {
			logging.Warn("Analyzer", "failure %s %s not analyzed: %v", failure.Method, failure.Endpoint, err)
			continue
		}

		failure.RootCause = analysis.RootCause
		failure.RiskLevel = models.CoerceRiskLevel(analysis.RiskLevel)
		failure.FixSuggestion = analysis.FixSuggestion
		analyzed++
	}

	if attempted == 0 || analyzed > 0 {
		record.Summary.AnalyzerUsed = true
	}

	if err := st.SaveRun(record); err != nil {
		return nil, err
	}

	logging.Info("Analyzer", "analyzed %d of %d failures for run %s", analyzed, attempted, runID)
	return record, nil
}
