package domain

import "fmt"

// Bounds is an inclusive [Min, Max] interval.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the bounds, inclusive on both ends.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// ScoringWeights are the maximum points each score component can contribute
// and the caps on modification penalties. Admin-tunable in deployments, which
// is why they travel inside the immutable EvaluationConfig rather than living
// as package state.
type ScoringWeights struct {
	BEPProximity    float64 `json:"bep_proximity"`
	Efficiency      float64 `json:"efficiency"`
	HeadMargin      float64 `json:"head_margin"`
	SuctionMargin   float64 `json:"suction_margin"`
	TrimPenaltyMax  float64 `json:"trim_penalty_max"`
	SpeedPenaltyMax float64 `json:"speed_penalty_max"`
}

// EvaluationConfig carries every tunable of the evaluation pipeline.
// Callers populate it (normally from DefaultConfig plus overrides) and the
// engine treats it as read-only.
type EvaluationConfig struct {
	QBPBounds              Bounds         `json:"qbp_bounds"`                 // duty flow / BEP flow
	TrimBounds             Bounds         `json:"trim_bounds"`                // impeller diameter ratio
	SpeedBoundsRPM         Bounds         `json:"speed_bounds_rpm"`           // absolute RPM
	ExtrapolationMarginPct float64        `json:"extrapolation_margin_pct"`   // beyond curve flow domain
	SuctionSafetyFactor    float64        `json:"suction_safety_factor"`      // available >= factor * required
	SuctionRatioExcellent  float64        `json:"suction_ratio_excellent"`    // full suction score at this ratio
	EfficiencyFloorPct     float64        `json:"efficiency_floor_pct"`       // hard gate
	HeadDeliveryTolerance  float64        `json:"head_delivery_tolerance"`    // achieved >= tol * required
	HeadOversizeTolerance  float64        `json:"head_oversize_tolerance"`    // direct match allowed up to (1+tol) * required
	BEPDeviationCutoff     float64        `json:"bep_deviation_cutoff"`       // |QBP-1| at which proximity score reaches zero
	MaxSolverIterations    int            `json:"max_solver_iterations"`      // bisection budget
	ConvergenceToleranceM  float64        `json:"convergence_tolerance_m"`    // head residual, metres
	Weights                ScoringWeights `json:"weights"`
	TopK                   int            `json:"top_k"`
}

// DefaultConfig returns the standard evaluation configuration.
func DefaultConfig() EvaluationConfig {
	return EvaluationConfig{
		QBPBounds:              Bounds{Min: 0.60, Max: 1.30},
		TrimBounds:             Bounds{Min: 0.75, Max: 1.00},
		SpeedBoundsRPM:         Bounds{Min: 600, Max: 3600},
		ExtrapolationMarginPct: 15,
		SuctionSafetyFactor:    1.5,
		SuctionRatioExcellent:  2.5,
		EfficiencyFloorPct:     40,
		HeadDeliveryTolerance:  0.98,
		HeadOversizeTolerance:  0.10,
		BEPDeviationCutoff:     0.50,
		MaxSolverIterations:    60,
		ConvergenceToleranceM:  0.01,
		Weights: ScoringWeights{
			BEPProximity:    40,
			Efficiency:      30,
			HeadMargin:      20,
			SuctionMargin:   10,
			TrimPenaltyMax:  15,
			SpeedPenaltyMax: 15,
		},
		TopK: 10,
	}
}

// Validate checks config coherence. Malformed configs abort the request at
// the Select boundary, before any per-pump work.
func (c *EvaluationConfig) Validate() error {
	if c.QBPBounds.Min <= 0 || c.QBPBounds.Max < c.QBPBounds.Min {
		return fmt.Errorf("invalid QBP bounds [%g, %g]", c.QBPBounds.Min, c.QBPBounds.Max)
	}
	if c.TrimBounds.Min <= 0 || c.TrimBounds.Min > 1 || c.TrimBounds.Max > 1 || c.TrimBounds.Max < c.TrimBounds.Min {
		return fmt.Errorf("invalid trim bounds [%g, %g]", c.TrimBounds.Min, c.TrimBounds.Max)
	}
	if c.SpeedBoundsRPM.Min <= 0 || c.SpeedBoundsRPM.Max < c.SpeedBoundsRPM.Min {
		return fmt.Errorf("invalid speed bounds [%g, %g] RPM", c.SpeedBoundsRPM.Min, c.SpeedBoundsRPM.Max)
	}
	if c.ExtrapolationMarginPct < 0 || c.ExtrapolationMarginPct > 100 {
		return fmt.Errorf("extrapolation margin must be in [0, 100] percent, got %g", c.ExtrapolationMarginPct)
	}
	if c.SuctionSafetyFactor < 1 {
		return fmt.Errorf("suction safety factor must be >= 1, got %g", c.SuctionSafetyFactor)
	}
	if c.SuctionRatioExcellent <= c.SuctionSafetyFactor {
		return fmt.Errorf("excellent suction ratio %g must exceed safety factor %g",
			c.SuctionRatioExcellent, c.SuctionSafetyFactor)
	}
	if c.EfficiencyFloorPct < 0 || c.EfficiencyFloorPct > 100 {
		return fmt.Errorf("efficiency floor must be in [0, 100] percent, got %g", c.EfficiencyFloorPct)
	}
	if c.HeadDeliveryTolerance <= 0 || c.HeadDeliveryTolerance > 1 {
		return fmt.Errorf("head delivery tolerance must be in (0, 1], got %g", c.HeadDeliveryTolerance)
	}
	if c.HeadOversizeTolerance < 0 {
		return fmt.Errorf("head oversize tolerance must be non-negative, got %g", c.HeadOversizeTolerance)
	}
	if c.BEPDeviationCutoff <= 0 {
		return fmt.Errorf("BEP deviation cutoff must be positive, got %g", c.BEPDeviationCutoff)
	}
	if c.MaxSolverIterations <= 0 {
		return fmt.Errorf("max solver iterations must be positive, got %d", c.MaxSolverIterations)
	}
	if c.ConvergenceToleranceM <= 0 {
		return fmt.Errorf("convergence tolerance must be positive, got %g", c.ConvergenceToleranceM)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top-k must be positive, got %d", c.TopK)
	}
	w := c.Weights
	for _, v := range []float64{w.BEPProximity, w.Efficiency, w.HeadMargin, w.SuctionMargin, w.TrimPenaltyMax, w.SpeedPenaltyMax} {
		if v < 0 {
			return fmt.Errorf("scoring weights must be non-negative")
		}
	}
	return nil
}
