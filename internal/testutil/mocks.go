// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kusari-oss/apivet/internal/vet/analyzer"
)

// MockAnalyzer provides a mock implementation of the Analyzer interface
// for enrichment and report tests.
type MockAnalyzer struct {
	mock.Mock
}

// Analyze mocks the Analyze method
func (m *MockAnalyzer) Analyze(ctx context.Context, failure analyzer.FailureContext) (*analyzer.Analysis, error) {
	args := m.Called(ctx, failure)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analyzer.Analysis), args.Error(1)
}

// StaticAnalyzer returns the same analysis for every failure and counts
// its invocations. Useful where full expectation plumbing is overkill.
type StaticAnalyzer struct {
	Analysis analyzer.Analysis
	Err      error
	Calls    int
}

// Analyze returns the configured verdict or error.
func (s *StaticAnalyzer) Analyze(ctx context.Context, failure analyzer.FailureContext) (*analyzer.Analysis, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	out := s.Analysis
	return &out, nil
}
