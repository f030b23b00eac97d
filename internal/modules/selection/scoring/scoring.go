// Package scoring turns a feasible solution into a weighted score breakdown.
//
// Score is a pure function: no side effects, identical inputs always produce
// identical output. All tunables come from the EvaluationConfig; the package
// holds no state.
package scoring

import (
	"math"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// Component and penalty names used in the score breakdown.
const (
	ComponentBEPProximity  = "bep_proximity"
	ComponentEfficiency    = "efficiency"
	ComponentHeadMargin    = "head_margin"
	ComponentSuctionMargin = "suction_margin"
	PenaltyTrim            = "trim"
	PenaltySpeed           = "speed"
)

// Head-margin bands: full score inside the ideal band, linear decay through
// the moderate and heavy oversizing bands, zero beyond.
const (
	idealMarginMax    = 0.05
	moderateMarginMax = 0.15
	heavyMarginMax    = 0.30
	undersizeFloor    = -0.02
)

// fullPenaltySpeedDeviation is the speed-ratio deviation at which the speed
// penalty reaches its configured cap.
const fullPenaltySpeedDeviation = 0.5

// Score computes the breakdown for a feasible solution against its curve's
// declared best efficiency point.
func Score(sol *domain.Solution, bep catalog.BestEfficiencyPoint,
	duty *domain.DutyRequirement, cfg *domain.EvaluationConfig) domain.ScoreBreakdown {
	w := cfg.Weights

	// The total is accumulated in fixed term order, never by ranging over the
	// maps: float addition is not associative and map iteration order would
	// make identical inputs disagree in the last ulp.
	bepTerm := bepProximity(duty.QBP(bep), w.BEPProximity, cfg.BEPDeviationCutoff)
	effTerm := efficiency(sol.EfficiencyPct, w.Efficiency)
	headTerm := headMargin(sol.HeadM, duty.HeadM, w.HeadMargin)
	total := bepTerm + effTerm + headTerm

	components := map[string]float64{
		ComponentBEPProximity: bepTerm,
		ComponentEfficiency:   effTerm,
		ComponentHeadMargin:   headTerm,
	}

	// Optional term: present only when the installation supplied a suction
	// head and the curve carries NPSH data. Never estimated.
	if duty.SuctionHeadAvailableM != nil && sol.SuctionHeadM > 0 {
		suctionTerm := suctionMargin(
			*duty.SuctionHeadAvailableM/sol.SuctionHeadM,
			w.SuctionMargin, cfg.SuctionSafetyFactor, cfg.SuctionRatioExcellent)
		components[ComponentSuctionMargin] = suctionTerm
		total += suctionTerm
	}

	penalties := map[string]float64{}
	if sol.TrimRatio < 1 {
		p := trimPenalty(sol.TrimRatio, w.TrimPenaltyMax, cfg.TrimBounds.Min)
		penalties[PenaltyTrim] = p
		total -= p
	}
	if sol.SpeedRatio != 1 {
		p := speedPenalty(sol.SpeedRatio, w.SpeedPenaltyMax)
		penalties[PenaltySpeed] = p
		total -= p
	}

	return domain.ScoreBreakdown{
		Components: components,
		Penalties:  penalties,
		Total:      total,
	}
}

// bepProximity decays smoothly from the maximum at QBP 1.0 to zero at the
// deviation cutoff.
func bepProximity(qbp, weight, cutoff float64) float64 {
	if qbp <= 0 {
		return 0
	}
	dev := math.Abs(qbp - 1)
	if dev >= cutoff {
		return 0
	}
	frac := 1 - dev/cutoff
	return weight * frac * frac
}

// efficiency increases monotonically with achieved efficiency. Candidates
// below the floor never reach scoring; the gate already excluded them.
func efficiency(effPct, weight float64) float64 {
	return weight * clamp(effPct/100, 0, 1)
}

// headMargin rewards a small positive margin and decays linearly through the
// oversizing bands. Undersizing beyond the gate tolerance scores zero.
func headMargin(achieved, required, weight float64) float64 {
	margin := achieved/required - 1

	switch {
	case margin < undersizeFloor:
		return 0
	case margin < 0:
		return weight * (1 - margin/undersizeFloor)
	case margin <= idealMarginMax:
		return weight
	case margin <= moderateMarginMax:
		frac := (margin - idealMarginMax) / (moderateMarginMax - idealMarginMax)
		return weight * (1 - 0.5*frac)
	case margin <= heavyMarginMax:
		frac := (margin - moderateMarginMax) / (heavyMarginMax - moderateMarginMax)
		return weight * 0.5 * (1 - frac)
	default:
		return 0
	}
}

// suctionMargin scales between the minimum acceptable ratio (the safety
// factor, where the gate sits) and the excellent ratio.
func suctionMargin(ratio, weight, minAcceptable, excellent float64) float64 {
	return weight * clamp((ratio-minAcceptable)/(excellent-minAcceptable), 0, 1)
}

// trimPenalty grows proportionally to diameter removed, reaching the cap at
// the configured trim minimum.
func trimPenalty(ratio, maxPenalty, trimMin float64) float64 {
	span := 1 - trimMin
	if span <= 0 {
		return 0
	}
	return math.Min(maxPenalty, maxPenalty*(1-ratio)/span)
}

// speedPenalty grows proportionally to the speed-ratio deviation from 1.0,
// capped at the configured maximum.
func speedPenalty(ratio, maxPenalty float64) float64 {
	dev := math.Abs(ratio - 1)
	return math.Min(maxPenalty, maxPenalty*dev/fullPenaltySpeedDeviation)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
