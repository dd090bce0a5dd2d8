package engine

import (
	"github.com/xab-mack/nexeth/internal/model"
)

// FilterBySeverity keeps violations at or above threshold.
func FilterBySeverity(result *model.DetectorResult, threshold model.Severity) *model.DetectorResult {
	return result.Filter(func(v model.Violation) bool {
		return model.SeverityGTE(v.Severity, threshold)
	})
}

// ExceedsThreshold reports whether result holds a violation at or above
// threshold. Optimization findings never fail a run unless threshold is
// optimization itself.
func ExceedsThreshold(result *model.DetectorResult, threshold model.Severity) bool {
	for _, s := range model.Severities {
		if model.SeverityGTE(s, threshold) && result.Count(s) > 0 {
			return true
		}
	}
	return false
}
