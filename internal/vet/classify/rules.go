// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"fmt"

	"github.com/kusari-oss/apivet/internal/core/format"
	"github.com/kusari-oss/apivet/internal/core/models"
	"github.com/kusari-oss/apivet/internal/vet/condition"
	"github.com/kusari-oss/apivet/pkg/logging"
)

// Rule is one user-supplied classification rule. The condition is a CEL
// expression over a `result` map carrying status_code, body, test_type and
// expected_failure. A matching rule marks the case FAILED with the rule's
// reason.
type Rule struct {
	ID        string `yaml:"id"`
	Condition string `yaml:"condition"`
	Reason    string `yaml:"reason"`
}

// RulesConfig is the on-disk shape of a custom rules file.
type RulesConfig struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules loads custom classification rules from a YAML or JSON file.
func LoadRules(filePath string) ([]Rule, error) {
	var cfg RulesConfig
	if err := format.ParseFile(filePath, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing rules file: %w", err)
	}

	for i, rule := range cfg.Rules {
		if rule.Condition == "" {
			return nil, fmt.Errorf("rule %d (%s) has no condition", i, rule.ID)
		}
		if rule.Reason == "" {
			return nil, fmt.Errorf("rule %d (%s) has no reason", i, rule.ID)
		}
	}

	return cfg.Rules, nil
}

// applyCustomRules evaluates custom rules in file order. An expression that
// fails to evaluate is skipped rather than aborting classification; the
// built-in rules already produced a deterministic baseline.
func (c *Classifier) applyCustomRules(statusCode int, body string, tc models.TestCase) (models.Outcome, string, bool) {
	if len(c.custom) == 0 {
		return "", "", false
	}

	evaluator, err := condition.NewCELEvaluator()
	if err != nil {
		logging.Warn("Classify", "could not create CEL evaluator: %v", err)
		return "", "", false
	}

	result := map[string]interface{}{
		"status_code":      statusCode,
		"body":             body,
		"test_type":        string(tc.TestType),
		"expected_failure": tc.ExpectedFailure,
	}

	for _, rule := range c.custom {
		matched, err := evaluator.EvaluateExpression(rule.Condition, result)
		if err != nil {
			logging.Warn("Classify", "rule %s skipped: %v", rule.ID, err)
			continue
		}
		if matched {
			return models.OutcomeFailed, rule.Reason, true
		}
	}

	return "", "", false
}
