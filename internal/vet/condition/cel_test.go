// SPDX-License-Identifier: Apache-2.0

package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateExpression(t *testing.T) {
	evaluator, err := NewCELEvaluator()
	require.NoError(t, err)

	result := map[string]interface{}{
		"status_code":      429,
		"body":             `{"error": "rate limited"}`,
		"test_type":        "rate_limit",
		"expected_failure": true,
	}

	tests := []struct {
		name       string
		expression string
		expected   bool
	}{
		{
			name:       "NumericComparison",
			expression: `result.status_code == 429`,
			expected:   true,
		},
		{
			name:       "StringContains",
			expression: `result.body.contains("rate limited")`,
			expected:   true,
		},
		{
			name:       "CompoundCondition",
			expression: `result.test_type == "rate_limit" && result.status_code >= 400`,
			expected:   true,
		},
		{
			name:       "BooleanField",
			expression: `!result.expected_failure`,
			expected:   false,
		},
		{
			name:       "NonMatching",
			expression: `result.status_code < 400`,
			expected:   false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := evaluator.EvaluateExpression(tc.expression, result)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}

	t.Run("ParseError", func(t *testing.T) {
		_, err := evaluator.EvaluateExpression(`result.status_code ==`, result)
		assert.Error(t, err)
	})

	t.Run("NonBooleanResult", func(t *testing.T) {
		_, err := evaluator.EvaluateExpression(`result.status_code`, result)
		assert.Error(t, err)
	})
}
