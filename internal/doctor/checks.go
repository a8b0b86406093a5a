// Package doctor runs diagnostic checks that explain what hypertop can see
// on this machine: whether the config is valid, which data sources answer,
// and whether GPUs are reachable.
package doctor

import (
	"fmt"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status written by MarshalText.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pass":
		*s = StatusPass
	case "warn":
		*s = StatusWarn
	case "fail":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown check status %q", text)
	}
	return nil
}

// Check categories, in display order.
const (
	CategoryConfig  = "CONFIG"
	CategorySources = "SOURCES"
	CategoryGPU     = "GPU"
)

// Categories lists every category in display order.
var Categories = []string{CategoryConfig, CategorySources, CategoryGPU}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "CONFIG", "SOURCES").
	Category() string

	// Run executes the check and returns the result.
	Run() CheckResult
}

// RunAll executes all checks in order. Source checks share a backend whose
// caches are not safe for concurrent use, so they never run in parallel.
func RunAll(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run()
	}
	return results
}

// GroupByCategory returns the indices of checks per category.
func GroupByCategory(checks []Check) map[string][]int {
	grouped := make(map[string][]int)
	for i, check := range checks {
		cat := check.Category()
		grouped[cat] = append(grouped[cat], i)
	}
	return grouped
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	warn := counts[StatusWarn]
	fail := counts[StatusFail]

	if fail == 0 && warn == 0 {
		return "Everything looks good"
	}
	if fail == 0 {
		return fmt.Sprintf("%d warning%s, nothing broken", warn, pluralize(warn))
	}

	total := warn + fail
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
