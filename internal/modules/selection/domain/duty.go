// Package domain holds the pure data types of the pump selection engine.
//
// Everything here is immutable after construction: a DutyRequirement and an
// EvaluationConfig are created once per selection request and threaded
// explicitly through every function. The engine keeps no state between calls.
package domain

import (
	"fmt"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
)

// DutyRequirement is the operating point a pump must satisfy.
type DutyRequirement struct {
	FlowM3H               float64          `json:"flow_m3h"`
	HeadM                 float64          `json:"head_m"`
	SuctionHeadAvailableM *float64         `json:"suction_head_available_m,omitempty"`
	PumpType              catalog.PumpType `json:"pump_type,omitempty"` // optional filter
}

// Validate checks the duty invariants. Called once at the Select boundary;
// a failure here aborts the request before any per-pump work.
func (d *DutyRequirement) Validate() error {
	if d.FlowM3H <= 0 {
		return fmt.Errorf("duty flow must be positive, got %g", d.FlowM3H)
	}
	if d.HeadM <= 0 {
		return fmt.Errorf("duty head must be positive, got %g", d.HeadM)
	}
	if d.SuctionHeadAvailableM != nil && *d.SuctionHeadAvailableM < 0 {
		return fmt.Errorf("suction head available must be non-negative, got %g", *d.SuctionHeadAvailableM)
	}
	return nil
}

// QBP returns the duty flow over BEP flow ratio for a curve's declared BEP.
// Returns 0 when the BEP flow is missing.
func (d *DutyRequirement) QBP(bep catalog.BestEfficiencyPoint) float64 {
	if bep.FlowM3H <= 0 {
		return 0
	}
	return d.FlowM3H / bep.FlowM3H
}
