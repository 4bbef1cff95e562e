package report

import (
	"slices"

	"github.com/secscan/secscan/internal/types"
)

// SeverityOrder lists severities from most to least severe.
var SeverityOrder = []types.Severity{types.SevCritical, types.SevHigh, types.SevMed, types.SevLow}

// SortBySeverity returns a copy of findings ordered critical first. The sort
// is stable, so findings of equal severity keep their scan order.
func SortBySeverity(findings []types.Finding) []types.Finding {
	out := slices.Clone(findings)
	slices.SortStableFunc(out, func(a, b types.Finding) int {
		return b.Severity.Rank() - a.Severity.Rank()
	})
	return out
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(findings []types.Finding) map[types.Severity]int {
	counts := make(map[types.Severity]int, len(SeverityOrder))
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// ShouldFail reports whether any finding is at or above failOn. failOn is
// one of low, medium, high, critical or none; an unknown value falls back
// to low.
func ShouldFail(findings []types.Finding, failOn string) bool {
	if failOn == "none" {
		return false
	}
	th := types.Severity(failOn).Rank()
	if th == 0 {
		th = types.SevLow.Rank()
	}
	for _, f := range findings {
		if f.Severity.Rank() >= th {
			return true
		}
	}
	return false
}
