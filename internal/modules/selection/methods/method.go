// Package methods implements the modification solver: the four strategies a
// curve can use to meet a duty point, tried in strict fallback order.
//
// The order is fixed: direct, extended extrapolation, impeller trim, speed
// variation. The first strategy that succeeds wins; later strategies are not
// evaluated. A strategy that fails (including a non-converging ratio search)
// is not an error, the solver simply moves on. When all four fail the curve
// contributes no solution and the pump may still succeed via another curve.
package methods

import (
	"github.com/rs/zerolog"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/curve"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// Method is one modification strategy: attempt to make the curve meet the
// duty, returning the achieved solution and whether the attempt succeeded.
type Method interface {
	Name() domain.ModificationMethod
	Solve(it *curve.Interpolator, c *catalog.PerformanceCurve,
		duty *domain.DutyRequirement, cfg *domain.EvaluationConfig) (domain.Solution, bool)
}

// Registry holds the strategies in fallback order.
type Registry struct {
	methods []Method
	log     zerolog.Logger
}

// NewRegistry creates a registry with the standard strategy order.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		methods: []Method{
			&DirectMethod{},
			&ExtrapolateMethod{},
			&TrimMethod{},
			&SpeedMethod{},
		},
		log: log.With().Str("component", "solver").Logger(),
	}
}

// Solve tries each strategy in order and returns the first success.
func (r *Registry) Solve(it *curve.Interpolator, c *catalog.PerformanceCurve,
	duty *domain.DutyRequirement, cfg *domain.EvaluationConfig) (domain.Solution, bool) {
	for _, m := range r.methods {
		if sol, ok := m.Solve(it, c, duty, cfg); ok {
			r.log.Debug().
				Str("curve", c.ID).
				Str("method", string(m.Name())).
				Float64("head_m", sol.HeadM).
				Msg("Curve solved")
			return sol, true
		}
	}
	return domain.Solution{}, false
}

// headAcceptable reports whether an achieved head both delivers the duty and
// stays inside the oversize window. A grossly oversized direct match is
// rejected here so the trim strategy gets a chance to bring the curve down
// onto the duty point.
func headAcceptable(achieved float64, duty *domain.DutyRequirement, cfg *domain.EvaluationConfig) bool {
	return achieved >= cfg.HeadDeliveryTolerance*duty.HeadM &&
		achieved <= (1+cfg.HeadOversizeTolerance)*duty.HeadM
}
