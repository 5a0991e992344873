// Package report assembles the per-run impact report handed to external
// consumers. All values are in-memory; rendering and serialization belong
// to collaborators.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"ripple/internal/callgraph"
	"ripple/internal/errors"
	"ripple/internal/propagate"
	"ripple/internal/registry"
)

// Diagnostic is a recoverable condition absorbed during a run.
type Diagnostic struct {
	Code    errors.ErrorCode `json:"code"`
	File    string           `json:"file,omitempty"`
	Message string           `json:"message"`
}

// ImpactReport is the complete result of analyzing one commit.
type ImpactReport struct {
	AnalysisID       string    `json:"analysisId"`
	Timestamp        time.Time `json:"timestamp"`
	SourceRepository string    `json:"sourceRepository"`
	SourceCommit     string    `json:"sourceCommit"`

	ChangedFiles     []string              `json:"changedFiles"`
	ChangedFunctions []registry.FunctionID `json:"changedFunctions"`

	Scores          map[string]propagate.ImpactScore `json:"scores"`
	DeploymentOrder []string                         `json:"deploymentOrder"`

	HelperImpacts   []callgraph.HelperImpact       `json:"helperImpacts,omitempty"`
	Recommendations []propagate.TestRecommendation `json:"recommendations,omitempty"`
	DanglingCalls   []callgraph.DanglingEdge       `json:"danglingCalls,omitempty"`
	Diagnostics     []Diagnostic                   `json:"diagnostics,omitempty"`

	TotalEstimatedHours float64 `json:"totalEstimatedHours"`
}

// New creates an empty report with a fresh analysis id.
func New(sourceRepo, commit string) *ImpactReport {
	return &ImpactReport{
		AnalysisID:       uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		SourceRepository: sourceRepo,
		SourceCommit:     commit,
		Scores:           make(map[string]propagate.ImpactScore),
	}
}

// AffectedRepositories returns the scored repository names in ascending
// order.
func (r *ImpactReport) AffectedRepositories() []string {
	names := make([]string, 0, len(r.Scores))
	for name := range r.Scores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HighRiskRepositories returns repositories scored high or critical, in
// ascending name order.
func (r *ImpactReport) HighRiskRepositories() []string {
	var names []string
	for name, score := range r.Scores {
		if score.Risk == propagate.RiskHigh || score.Risk == propagate.RiskCritical {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Finalize computes the aggregate effort total.
func (r *ImpactReport) Finalize() {
	total := 0.0
	for _, s := range r.Scores {
		total += s.EstimatedHours
	}
	// Keep one-decimal rounding consistent with per-repo estimates.
	r.TotalEstimatedHours = math.Round(total*10) / 10
}
