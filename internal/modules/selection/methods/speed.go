package methods

import (
	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/curve"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// Physical bracket for the speed-ratio search. Wider than any configured RPM
// window; the gate checks the absolute RPM and reports out-of-bounds speeds.
const (
	speedSearchMin = 0.40
	speedSearchMax = 1.60
)

// SpeedMethod varies the rotational speed so the duty point lands on the
// scaled curve. Affinity laws: Q2 = Q1*s, H2 = H1*s^2, P2 = P1*s^3.
// Suction head required scales with s^2, same as head.
type SpeedMethod struct{}

// Name returns the method tag.
func (m *SpeedMethod) Name() domain.ModificationMethod {
	return domain.MethodSpeedVaried
}

// Solve searches for s with H_duty = s^2 * H(Q_duty / s), the same search
// structure as the trim solve but able to move in both directions: slowing
// down sheds head, speeding up adds it.
func (m *SpeedMethod) Solve(it *curve.Interpolator, c *catalog.PerformanceCurve,
	duty *domain.DutyRequirement, cfg *domain.EvaluationConfig) (domain.Solution, bool) {
	q, h := duty.FlowM3H, duty.HeadM

	residual := func(s float64) (float64, bool) {
		est, err := it.At(q / s)
		if err != nil {
			return 0, false
		}
		return s*s*est.HeadM - h, true
	}

	s, ok := solveRatio(residual, speedSearchMin, speedSearchMax, cfg.MaxSolverIterations, cfg.ConvergenceToleranceM)
	if !ok {
		return domain.Solution{}, false
	}

	est, err := it.At(q / s)
	if err != nil {
		return domain.Solution{}, false
	}

	return domain.Solution{
		Method:        domain.MethodSpeedVaried,
		FlowM3H:       q,
		HeadM:         s * s * est.HeadM,
		EfficiencyPct: est.EfficiencyPct,
		PowerKW:       s * s * s * est.PowerKW,
		SuctionHeadM:  s * s * est.SuctionHeadM,
		TrimRatio:     1,
		SpeedRatio:    s,
		SpeedRPM:      s * c.SpeedRPM,
		Extrapolated:  est.Extrapolated,
	}, true
}
