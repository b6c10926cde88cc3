// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// HTTPMethod is the closed set of methods a plan may use.
type HTTPMethod string

const (
	MethodGet     HTTPMethod = "GET"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodDelete  HTTPMethod = "DELETE"
	MethodPatch   HTTPMethod = "PATCH"
	MethodHead    HTTPMethod = "HEAD"
	MethodOptions HTTPMethod = "OPTIONS"
)

// ValidMethods lists every accepted HTTP method in declaration order.
var ValidMethods = []HTTPMethod{
	MethodGet, MethodPost, MethodPut, MethodDelete,
	MethodPatch, MethodHead, MethodOptions,
}

// IsValidMethod reports whether m (already upper-cased) is in the method enum.
func IsValidMethod(m string) bool {
	for _, v := range ValidMethods {
		if string(v) == m {
			return true
		}
	}
	return false
}

// RequiresBody reports whether the method must carry a request body schema.
func RequiresBody(m HTTPMethod) bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// TestType is the closed set of adversarial test categories.
type TestType string

const (
	TestMissingField   TestType = "missing_field"
	TestWrongType      TestType = "wrong_type"
	TestBoundaryValues TestType = "boundary_values"
	TestMalformedJSON  TestType = "malformed_json"
	TestSQLInjection   TestType = "sql_injection"
	TestXSS            TestType = "xss"
	TestRateLimit      TestType = "rate_limit"
	TestAuthBypass     TestType = "auth_bypass"
	TestTimeout        TestType = "timeout"
	TestInvalidAuth    TestType = "invalid_auth"
)

// ValidTestTypes lists every accepted test type in declaration order.
var ValidTestTypes = []TestType{
	TestMissingField, TestWrongType, TestBoundaryValues, TestMalformedJSON,
	TestSQLInjection, TestXSS, TestRateLimit, TestAuthBypass,
	TestTimeout, TestInvalidAuth,
}

// IsValidTestType reports whether t is in the test-type enum.
func IsValidTestType(t string) bool {
	for _, v := range ValidTestTypes {
		if string(v) == t {
			return true
		}
	}
	return false
}

// Outcome classifies a single executed test case.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeError   Outcome = "error"
	OutcomeTimeout Outcome = "timeout"
)

// RiskLevel grades an analyzed failure.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// CoerceRiskLevel maps any string onto the closed risk enum. Unknown values
// become medium so an unruly analyzer cannot smuggle new levels into reports.
func CoerceRiskLevel(s string) RiskLevel {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return RiskLevel(s)
	default:
		return RiskMedium
	}
}

// EndpointSpec describes one endpoint of the target API within a plan.
type EndpointSpec struct {
	Path        string                 `json:"endpoint" yaml:"endpoint"`
	Method      HTTPMethod             `json:"method" yaml:"method"`
	RequestBody map[string]interface{} `json:"request_body,omitempty" yaml:"request_body,omitempty"`
	Response    map[string]interface{} `json:"response_schema,omitempty" yaml:"response_schema,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// TestCase is one adversarial probe against an endpoint of the same plan.
type TestCase struct {
	Endpoint        string                 `json:"endpoint" yaml:"endpoint"`
	Method          HTTPMethod             `json:"method" yaml:"method"`
	TestType        TestType               `json:"test_type" yaml:"test_type"`
	Payload         map[string]interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
	Headers         map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
	ExpectedFailure bool                   `json:"expected_failure" yaml:"expected_failure"`
	Description     string                 `json:"description,omitempty" yaml:"description,omitempty"`
}

// Plan is a validated, immutable set of endpoints and test cases for one
// target API. It only ever exists in accepted form; the gate never persists
// a partially validated plan.
type Plan struct {
	Hash      string         `json:"hash" yaml:"hash"`
	BaseURL   string         `json:"base_url" yaml:"base_url"`
	Endpoints []EndpointSpec `json:"endpoints" yaml:"endpoints"`
	TestCases []TestCase     `json:"test_cases" yaml:"test_cases"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
}

// ExecutionResult is the immutable record of one executed test case.
// StatusCode is nil when the request never produced a response.
type ExecutionResult struct {
	TestCase       TestCase          `json:"test_case" yaml:"test_case"`
	StatusCode     *int              `json:"status_code" yaml:"status_code"`
	ResponseBody   string            `json:"response_body" yaml:"response_body"`
	ResponseTimeMs float64           `json:"response_time_ms" yaml:"response_time_ms"`
	SafeHeaders    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Outcome        Outcome           `json:"outcome" yaml:"outcome"`
	FailureReason  string            `json:"failure_reason,omitempty" yaml:"failure_reason,omitempty"`
}

// RunStatus tracks the lifecycle of one run of a plan.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunError     RunStatus = "error"
)

// RunSummary aggregates one execution of one plan.
type RunSummary struct {
	RunID          string     `json:"run_id" yaml:"run_id"`
	PlanHash       string     `json:"plan_hash" yaml:"plan_hash"`
	Status         RunStatus  `json:"status" yaml:"status"`
	TotalTests     int        `json:"total_tests" yaml:"total_tests"`
	Passed         int        `json:"passed" yaml:"passed"`
	Failed         int        `json:"failed" yaml:"failed"`
	Errors         int        `json:"errors" yaml:"errors"`
	StabilityScore float64    `json:"stability_score" yaml:"stability_score"`
	PlannerUsed    bool       `json:"planner_used" yaml:"planner_used"`
	AnalyzerUsed   bool       `json:"analyzer_used" yaml:"analyzer_used"`
	StartedAt      time.Time  `json:"started_at" yaml:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// FailureRecord is the persisted subset of a non-passed result, optionally
// enriched by the analyzer exactly once.
type FailureRecord struct {
	RunID           string                 `json:"run_id" yaml:"run_id"`
	Endpoint        string                 `json:"endpoint" yaml:"endpoint"`
	Method          HTTPMethod             `json:"method" yaml:"method"`
	TestType        TestType               `json:"test_type" yaml:"test_type"`
	Payload         map[string]interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
	ResponseSnippet string                 `json:"response_snippet" yaml:"response_snippet"`
	StatusCode      *int                   `json:"status_code" yaml:"status_code"`
	ResponseTimeMs  float64                `json:"response_time_ms" yaml:"response_time_ms"`
	FailureReason   string                 `json:"failure_reason" yaml:"failure_reason"`
	RootCause       string                 `json:"root_cause,omitempty" yaml:"root_cause,omitempty"`
	RiskLevel       RiskLevel              `json:"risk_level,omitempty" yaml:"risk_level,omitempty"`
	FixSuggestion   string                 `json:"fix_suggestion,omitempty" yaml:"fix_suggestion,omitempty"`
}

// Analyzed reports whether the record already carries analyzer output.
func (f *FailureRecord) Analyzed() bool {
	return f.RootCause != ""
}
