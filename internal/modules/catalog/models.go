// Package catalog provides the pump catalog: models, validation, and storage.
package catalog

import (
	"fmt"
	"sort"
)

// PumpType classifies pump construction. Used for optional duty-side filtering.
type PumpType string

const (
	PumpTypeEndSuction   PumpType = "end_suction"
	PumpTypeSplitCase    PumpType = "split_case"
	PumpTypeInline       PumpType = "inline"
	PumpTypeMultistage   PumpType = "multistage"
	PumpTypeSubmersible  PumpType = "submersible"
	PumpTypeSelfPriming  PumpType = "self_priming"
	PumpTypeUnclassified PumpType = ""
)

// PerformancePoint is a single measured point on a pump curve.
type PerformancePoint struct {
	FlowM3H       float64 `json:"flow_m3h"`
	HeadM         float64 `json:"head_m"`
	EfficiencyPct float64 `json:"efficiency_pct"`
	PowerKW       float64 `json:"power_kw"`
	SuctionHeadM  float64 `json:"suction_head_m"` // NPSH required at this flow
}

// BestEfficiencyPoint is the declared BEP of a curve.
type BestEfficiencyPoint struct {
	FlowM3H       float64 `json:"flow_m3h"`
	HeadM         float64 `json:"head_m"`
	EfficiencyPct float64 `json:"efficiency_pct"`
}

// PerformanceCurve is one measured curve of a pump model, at a reference
// impeller diameter and rotational speed. Points are ordered by increasing flow;
// a zero-flow shutoff point is valid and kept in the interpolation domain.
type PerformanceCurve struct {
	ID                 string              `json:"id"`
	ImpellerDiameterMM float64             `json:"impeller_diameter_mm"`
	SpeedRPM           float64             `json:"speed_rpm"`
	Points             []PerformancePoint  `json:"points"`
	BEP                BestEfficiencyPoint `json:"bep"`
}

// PumpModel is one catalog entry with its measured curves.
// Immutable for the lifetime of one evaluation.
type PumpModel struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Type   PumpType           `json:"type"`
	Curves []PerformanceCurve `json:"curves"`
}

// CurveIssue describes why a curve failed validation.
type CurveIssue string

const (
	IssueTooFewPoints     CurveIssue = "too_few_points"
	IssueUnsortedFlow     CurveIssue = "unsorted_flow"
	IssueHeadNotMonotonic CurveIssue = "head_not_monotonic"
	IssueMissingBEP       CurveIssue = "missing_bep"
)

// Validate checks the curve invariants. Issues are reported, never silently
// repaired: a non-monotonic head curve is still evaluable (the interpolator
// degrades to linear) but must be flagged so the feasibility gate can exclude it.
func (c *PerformanceCurve) Validate() []CurveIssue {
	var issues []CurveIssue

	if len(c.Points) < 2 {
		issues = append(issues, IssueTooFewPoints)
		return issues
	}

	sorted := sort.SliceIsSorted(c.Points, func(i, j int) bool {
		return c.Points[i].FlowM3H < c.Points[j].FlowM3H
	})
	if !sorted {
		issues = append(issues, IssueUnsortedFlow)
	}

	if !c.HeadMonotonic() {
		issues = append(issues, IssueHeadNotMonotonic)
	}

	if c.BEP.FlowM3H <= 0 {
		issues = append(issues, IssueMissingBEP)
	}

	return issues
}

// HeadMonotonic reports whether head is non-increasing with flow.
// A small tolerance absorbs measurement noise near the shutoff point.
func (c *PerformanceCurve) HeadMonotonic() bool {
	const tolerance = 1e-9
	for i := 1; i < len(c.Points); i++ {
		if c.Points[i].HeadM > c.Points[i-1].HeadM+tolerance {
			return false
		}
	}
	return true
}

// FlowDomain returns the [min, max] flow covered by the curve points.
func (c *PerformanceCurve) FlowDomain() (float64, float64) {
	if len(c.Points) == 0 {
		return 0, 0
	}
	return c.Points[0].FlowM3H, c.Points[len(c.Points)-1].FlowM3H
}

// Validate checks the pump model invariants.
func (m *PumpModel) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("pump model has no id")
	}
	if len(m.Curves) == 0 {
		return fmt.Errorf("pump model %s has no curves", m.ID)
	}
	for i := range m.Curves {
		if m.Curves[i].ID == "" {
			return fmt.Errorf("pump model %s: curve %d has no id", m.ID, i)
		}
		if m.Curves[i].SpeedRPM <= 0 {
			return fmt.Errorf("pump model %s: curve %s has non-positive speed", m.ID, m.Curves[i].ID)
		}
	}
	return nil
}
