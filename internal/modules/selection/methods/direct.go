package methods

import (
	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/curve"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// DirectMethod evaluates the curve at its native diameter and speed with the
// duty flow inside the measured domain.
type DirectMethod struct{}

// Name returns the method tag.
func (m *DirectMethod) Name() domain.ModificationMethod {
	return domain.MethodDirect
}

// Solve succeeds when the duty flow is inside the measured domain and the
// achieved head lies in the acceptance window.
func (m *DirectMethod) Solve(it *curve.Interpolator, c *catalog.PerformanceCurve,
	duty *domain.DutyRequirement, cfg *domain.EvaluationConfig) (domain.Solution, bool) {
	if !it.InDomain(duty.FlowM3H) {
		return domain.Solution{}, false
	}

	est, err := it.At(duty.FlowM3H)
	if err != nil {
		return domain.Solution{}, false
	}
	if !headAcceptable(est.HeadM, duty, cfg) {
		return domain.Solution{}, false
	}

	return solutionFromEstimate(domain.MethodDirect, est, c), true
}

// ExtrapolateMethod is the direct evaluation extended into the configured
// extrapolation margin beyond the measured domain.
type ExtrapolateMethod struct{}

// Name returns the method tag.
func (m *ExtrapolateMethod) Name() domain.ModificationMethod {
	return domain.MethodExtrapolated
}

// Solve succeeds when the duty flow is inside domain plus margin and the
// extrapolated head lies in the acceptance window.
func (m *ExtrapolateMethod) Solve(it *curve.Interpolator, c *catalog.PerformanceCurve,
	duty *domain.DutyRequirement, cfg *domain.EvaluationConfig) (domain.Solution, bool) {
	if !it.WithinMargin(duty.FlowM3H) {
		return domain.Solution{}, false
	}

	est, err := it.At(duty.FlowM3H)
	if err != nil {
		return domain.Solution{}, false
	}
	if !headAcceptable(est.HeadM, duty, cfg) {
		return domain.Solution{}, false
	}

	return solutionFromEstimate(domain.MethodExtrapolated, est, c), true
}

// solutionFromEstimate wraps an unmodified estimate as a solution.
func solutionFromEstimate(method domain.ModificationMethod, est curve.Estimate, c *catalog.PerformanceCurve) domain.Solution {
	return domain.Solution{
		Method:        method,
		FlowM3H:       est.FlowM3H,
		HeadM:         est.HeadM,
		EfficiencyPct: est.EfficiencyPct,
		PowerKW:       est.PowerKW,
		SuctionHeadM:  est.SuctionHeadM,
		TrimRatio:     1,
		SpeedRatio:    1,
		SpeedRPM:      c.SpeedRPM,
		Extrapolated:  est.Extrapolated,
	}
}
