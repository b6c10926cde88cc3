// SPDX-License-Identifier: Apache-2.0

// Package classify assigns an outcome to one executed test case using
// fixed, reproducible rules. The first matching rule wins; the rule order
// never changes between runs.
package classify

import (
	"fmt"
	"strings"

	"github.com/kusari-oss/apivet/internal/core/models"
)

// stackTraceIndicators flag leaked internals in a sanitized body,
// case-insensitively.
var stackTraceIndicators = []string{
	"traceback", "at line", "file \"", "exception:",
	"java.lang.", "system.exception", "stack trace",
	"error occurred", "internal server error",
}

// Classifier applies the fixed outcome rules, optionally followed by
// user-supplied custom rules.
type Classifier struct {
	custom []Rule
}

// New creates a classifier with only the built-in rules.
func New() *Classifier {
	return &Classifier{}
}

// NewWithRules creates a classifier that evaluates the given custom rules
// after the built-in ones.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{custom: rules}
}

// Classify decides the outcome for one executed case. Timeout and transport
// errors are assigned upstream by the engine and never reach this function;
// statusCode is therefore always a real response code here.
func (c *Classifier) Classify(statusCode int, sanitizedBody string, tc models.TestCase) (models.Outcome, string) {
	// Rule 1: server errors always fail.
	if statusCode >= 500 {
		return models.OutcomeFailed, fmt.Sprintf("5xx Server Error (%d)", statusCode)
	}

	// Rule 3: bad input accepted when a failure was expected.
	if tc.ExpectedFailure && statusCode < 400 {
		return models.OutcomeFailed, "Invalid success - bad input was accepted"
	}

	// Rule 4: leaked stack traces or internals.
	if detectsStackTrace(sanitizedBody) {
		return models.OutcomeFailed, "Stack trace or sensitive info leaked"
	}

	// Rule 5: injection probes that the target let through.
	if tc.TestType == models.TestSQLInjection && statusCode < 400 {
		return models.OutcomeFailed, "SQL injection attempt succeeded"
	}
	if tc.TestType == models.TestXSS && statusCode < 400 {
		return models.OutcomeFailed, "XSS attempt succeeded"
	}

	// Custom rules run after every built-in rule has declined.
	if outcome, reason, matched := c.applyCustomRules(statusCode, sanitizedBody, tc); matched {
		return outcome, reason
	}

	return models.OutcomePassed, ""
}

func detectsStackTrace(body string) bool {
	lower := strings.ToLower(body)
	for _, indicator := range stackTraceIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
