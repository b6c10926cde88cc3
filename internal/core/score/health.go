// SPDX-License-Identifier: Apache-2.0

package score

// Health bands for a stability score.
type Health string

const (
	HealthExcellent Health = "EXCELLENT"
	HealthGood      Health = "GOOD"
	HealthFair      Health = "FAIR"
	HealthPoor      Health = "POOR"
)

// Band maps a score onto its health band.
func Band(score float64) Health {
	switch {
	case score >= 90:
		return HealthExcellent
	case score >= 70:
		return HealthGood
	case score >= 50:
		return HealthFair
	default:
		return HealthPoor
	}
}

// Recommendation returns the fixed guidance string for a health band.
func Recommendation(h Health) string {
	switch h {
	case HealthExcellent:
		return "API is very stable. Consider adding more edge case tests."
	case HealthGood:
		return "API is generally stable. Address the critical issues first."
	case HealthFair:
		return "API needs improvement. Focus on high-risk failures."
	default:
		return "API is unstable. Immediate action required on critical issues."
	}
}
