package propagate

import (
	"fmt"
	"strings"

	"ripple/internal/callgraph"
)

// TestRecommendation suggests tests for one impacted function.
type TestRecommendation struct {
	Function       string   // qualified function name
	File           string   // defining file
	TestTypes      []string // "unit", "integration"
	Priority       string   // "high" or "medium"
	Reason         string
	SuggestedTests []string
}

// Impact-contribution boundaries for test prioritization.
const (
	recommendHighCutoff   = 0.7
	recommendMediumCutoff = 0.4
)

// TestRecommendations buckets impacted functions by contribution: above
// the high cutoff both unit and integration tests are suggested, above the
// medium cutoff unit tests only, below neither. Depth-0 entries (the
// changed functions themselves) are skipped; the change's own tests are
// the caller's responsibility.
func TestRecommendations(impacts []callgraph.Impact) []TestRecommendation {
	var out []TestRecommendation
	for _, imp := range impacts {
		if imp.Depth == 0 {
			continue
		}

		name := imp.ID.Qualified()
		switch {
		case imp.Contribution > recommendHighCutoff:
			out = append(out, TestRecommendation{
				Function:  name,
				File:      imp.ID.File,
				TestTypes: []string{"unit", "integration"},
				Priority:  "high",
				Reason:    fmt.Sprintf("high impact contribution (%.2f) at depth %d", imp.Contribution, imp.Depth),
				SuggestedTests: []string{
					"test_" + testName(name) + "_with_changed_dependency",
					"test_" + testName(name) + "_integration",
				},
			})
		case imp.Contribution > recommendMediumCutoff:
			out = append(out, TestRecommendation{
				Function:  name,
				File:      imp.ID.File,
				TestTypes: []string{"unit"},
				Priority:  "medium",
				Reason:    fmt.Sprintf("medium impact contribution (%.2f) at depth %d", imp.Contribution, imp.Depth),
				SuggestedTests: []string{
					"test_" + testName(name) + "_basic",
				},
			})
		}
	}
	return out
}

func testName(qualified string) string {
	return strings.ToLower(strings.ReplaceAll(qualified, ".", "_"))
}
