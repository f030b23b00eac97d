package methods

import (
	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/curve"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// trimSearchFloor is the physical lower bracket for the diameter-ratio
// search. Deliberately below any sensible configured trim minimum: the gate
// enforces the configured bounds, and an out-of-bounds converged ratio must
// still be reported with the exclusion.
const trimSearchFloor = 0.50

// TrimMethod reduces the impeller diameter so the duty point lands on the
// scaled curve. Affinity laws: Q2 = Q1*r, H2 = H1*r^2, P2 = P1*r^3;
// efficiency is treated as invariant under trim.
type TrimMethod struct{}

// Name returns the method tag.
func (m *TrimMethod) Name() domain.ModificationMethod {
	return domain.MethodTrimmed
}

// Solve searches for r with H_duty = r^2 * H(Q_duty / r). The curve head is
// itself a nonlinear function of flow, so this is a bounded bisection, not a
// closed-form solve. Non-convergence means the method failed.
func (m *TrimMethod) Solve(it *curve.Interpolator, c *catalog.PerformanceCurve,
	duty *domain.DutyRequirement, cfg *domain.EvaluationConfig) (domain.Solution, bool) {
	q, h := duty.FlowM3H, duty.HeadM

	residual := func(r float64) (float64, bool) {
		est, err := it.At(q / r)
		if err != nil {
			return 0, false
		}
		return r*r*est.HeadM - h, true
	}

	r, ok := solveRatio(residual, trimSearchFloor, 1.0, cfg.MaxSolverIterations, cfg.ConvergenceToleranceM)
	if !ok {
		return domain.Solution{}, false
	}

	est, err := it.At(q / r)
	if err != nil {
		return domain.Solution{}, false
	}

	return domain.Solution{
		Method:        domain.MethodTrimmed,
		FlowM3H:       q,
		HeadM:         r * r * est.HeadM,
		EfficiencyPct: est.EfficiencyPct,
		PowerKW:       r * r * r * est.PowerKW,
		SuctionHeadM:  est.SuctionHeadM,
		TrimRatio:     r,
		SpeedRatio:    1,
		SpeedRPM:      c.SpeedRPM,
		Extrapolated:  est.Extrapolated,
	}, true
}
