// SPDX-License-Identifier: Apache-2.0

// Package gate is the deterministic acceptance boundary between the
// untrusted planner and everything downstream. A planner document either
// becomes a fully typed, accepted plan or is rejected wholesale with an
// ordered list of reasons; no partially validated plan ever escapes.
package gate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kusari-oss/apivet/internal/core/models"
	"github.com/kusari-oss/apivet/internal/core/schema"
)

var baseURLRegex = regexp.MustCompile(`^https?://[a-zA-Z0-9.-]+(?::\d+)?(?:/.*)?$`)

// RejectionError carries the ordered reasons a planner document was refused.
type RejectionError struct {
	Reasons []string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("plan rejected: %s", strings.Join(e.Reasons, "; "))
}

// Validate checks a raw planner document against the gate rules and, on
// acceptance, returns the typed immutable plan. It is a pure function of
// its inputs: the same document and base URL always produce the same
// decision and the same reason list in the same order. Errors accumulate
// across rules rather than short-circuiting, with one exception: a document
// whose status is anything but "ok" is refused immediately.
func Validate(raw map[string]interface{}, baseURL string) (*models.Plan, error) {
	var reasons []string

	// Rule 1: required top-level fields.
	for _, field := range []string{"status", "normalized_schema", "test_cases", "errors"} {
		if _, ok := raw[field]; !ok {
			reasons = append(reasons, fmt.Sprintf("Missing required field: %s", field))
		}
	}

	// Rule 2: anything but an "ok" plan is refused outright with the
	// planner's declared errors; no further checks run.
	status, _ := raw["status"].(string)
	if status != "ok" {
		reasons = append(reasons, stringList(raw["errors"])...)
		if len(reasons) == 0 {
			reasons = append(reasons, "Plan rejected by planner")
		}
		return nil, &RejectionError{Reasons: reasons}
	}

	// Structural envelope check before the per-item walk.
	envelopeErrors, err := schema.ValidateEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("error validating planner envelope: %w", err)
	}
	reasons = append(reasons, envelopeErrors...)

	// Rule 3: endpoint specs.
	endpoints, endpointReasons := validateEndpoints(raw["normalized_schema"])
	reasons = append(reasons, endpointReasons...)

	// Rule 4: test cases.
	cases, caseReasons := validateTestCases(raw["test_cases"])
	reasons = append(reasons, caseReasons...)

	// Rule 5: every test case must target a known endpoint.
	known := make(map[string]bool, len(endpoints))
	for _, ep := range endpoints {
		known[ep.Path] = true
	}
	if len(endpoints) > 0 {
		for i, tc := range cases {
			if tc.Endpoint != "" && !known[tc.Endpoint] {
				reasons = append(reasons,
					fmt.Sprintf("Test case %d references non-existent endpoint: %s", i, tc.Endpoint))
			}
		}
	}

	// Rule 6: base URL shape.
	if !ValidBaseURL(baseURL) {
		reasons = append(reasons, fmt.Sprintf("Invalid base URL: %s", baseURL))
	}

	if len(reasons) > 0 {
		return nil, &RejectionError{Reasons: reasons}
	}

	plan := &models.Plan{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Endpoints: endpoints,
		TestCases: cases,
		CreatedAt: time.Now().UTC(),
	}

	hash, err := ContentHash(endpoints, plan.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("error hashing plan content: %w", err)
	}
	plan.Hash = hash

	return plan, nil
}

// ValidBaseURL reports whether the base URL matches scheme://host[:port][/path]
// with scheme restricted to http/https.
func ValidBaseURL(baseURL string) bool {
	if baseURL == "" {
		return false
	}
	return baseURLRegex.MatchString(strings.TrimRight(baseURL, "/"))
}

// validateEndpoints walks the normalized_schema list in order, accumulating
// reasons. Endpoints that parse cleanly are returned in their original order
// with methods upper-cased.
func validateEndpoints(v interface{}) ([]models.EndpointSpec, []string) {
	var reasons []string

	// A missing or non-list value was already reported by rule 1 or the
	// envelope check.
	list, ok := v.([]interface{})
	if !ok {
		return nil, reasons
	}
	if len(list) == 0 {
		return nil, append(reasons, "normalized_schema cannot be empty")
	}

	endpoints := make([]models.EndpointSpec, 0, len(list))
	for idx, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			reasons = append(reasons, fmt.Sprintf("Endpoint at index %d must be an object", idx))
			continue
		}

		var ep models.EndpointSpec

		path, ok := m["endpoint"].(string)
		switch {
		case m["endpoint"] == nil:
			reasons = append(reasons, fmt.Sprintf("Endpoint at index %d missing 'endpoint'", idx))
		case !ok:
			reasons = append(reasons, fmt.Sprintf("Endpoint path must be a string at index %d", idx))
		case !strings.HasPrefix(path, "/"):
			reasons = append(reasons, fmt.Sprintf("Endpoint path must start with '/': %s", path))
		default:
			ep.Path = path
		}

		method, methodOK := upperMethod(m["method"])
		if m["method"] == nil {
			reasons = append(reasons, fmt.Sprintf("Endpoint at index %d missing 'method'", idx))
		} else if !methodOK {
			reasons = append(reasons, fmt.Sprintf("Invalid HTTP method at index %d: %v", idx, m["method"]))
		} else {
			ep.Method = models.HTTPMethod(method)
		}

		if models.RequiresBody(ep.Method) {
			if _, present := m["request_body"]; !present {
				reasons = append(reasons,
					fmt.Sprintf("Endpoint %s (%s) missing 'request_body'", ep.Path, ep.Method))
			}
		}
		ep.RequestBody = objectField(m, "request_body")
		ep.Response = objectField(m, "response_schema")
		ep.Parameters = objectField(m, "parameters")

		endpoints = append(endpoints, ep)
	}

	return endpoints, reasons
}

// validateTestCases walks the test_cases list in order, accumulating reasons.
func validateTestCases(v interface{}) ([]models.TestCase, []string) {
	var reasons []string

	list, ok := v.([]interface{})
	if !ok {
		return nil, reasons
	}
	if len(list) == 0 {
		return nil, append(reasons, "test_cases cannot be empty")
	}

	cases := make([]models.TestCase, 0, len(list))
	for idx, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			reasons = append(reasons, fmt.Sprintf("Test case at index %d must be an object", idx))
			continue
		}

		for _, field := range []string{"endpoint", "method", "test_type", "expected_failure"} {
			if _, present := m[field]; !present {
				reasons = append(reasons, fmt.Sprintf("Test case at index %d missing '%s'", idx, field))
			}
		}

		var tc models.TestCase
		tc.Endpoint, _ = m["endpoint"].(string)

		if m["method"] != nil {
			method, methodOK := upperMethod(m["method"])
			if !methodOK {
				reasons = append(reasons, fmt.Sprintf("Invalid HTTP method in test case %d: %v", idx, m["method"]))
			} else {
				tc.Method = models.HTTPMethod(method)
			}
		}

		if testType, present := m["test_type"]; present {
			s, _ := testType.(string)
			if !models.IsValidTestType(s) {
				reasons = append(reasons, fmt.Sprintf("Invalid test_type at index %d: %v", idx, testType))
			} else {
				tc.TestType = models.TestType(s)
			}
		}

		tc.ExpectedFailure, _ = m["expected_failure"].(bool)
		tc.Payload = objectField(m, "payload")
		tc.Headers = stringMapField(m, "headers")
		tc.Description, _ = m["description"].(string)

		cases = append(cases, tc)
	}

	return cases, reasons
}

// upperMethod normalizes a raw method value to upper case and reports
// whether it belongs to the method enum.
func upperMethod(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	upper := strings.ToUpper(s)
	return upper, models.IsValidMethod(upper)
}

func objectField(m map[string]interface{}, key string) map[string]interface{} {
	obj, _ := m[key].(map[string]interface{})
	return obj
}

func stringMapField(m map[string]interface{}, key string) map[string]string {
	obj, ok := m[key].(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func stringList(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
