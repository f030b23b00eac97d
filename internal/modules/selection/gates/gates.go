// Package gates applies the hard feasibility checks to a solved duty point.
//
// Every check runs independently so a record can carry several reasons at
// once; a pump is never excluded for just the first failure found. The gate
// only rejects, it never repairs: when an input a check needs is absent
// (no suction head supplied, no NPSH data on the curve) the check is skipped
// per fixed policy rather than fed a guessed value.
package gates

import (
	"strings"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// Evaluate runs the feasibility checks against a solved operating point and
// returns every failure, in fixed gate order. An empty slice means the
// solution passes. curveIssues carries the validation findings for the
// underlying curve.
func Evaluate(sol *domain.Solution, c *catalog.PerformanceCurve, curveIssues []catalog.CurveIssue,
	duty *domain.DutyRequirement, cfg *domain.EvaluationConfig) []domain.ExclusionDetail {
	var details []domain.ExclusionDetail

	// Curve-validity gate: the curve itself must be trustworthy. The point
	// counts only describe a too_few_points failure; other findings are
	// named through Issue instead of a meaningless achieved/required pair.
	if len(curveIssues) > 0 {
		detail := domain.ExclusionDetail{
			Reason: domain.ReasonCurveInvalid,
			Issue:  joinIssues(curveIssues),
		}
		for _, issue := range curveIssues {
			if issue == catalog.IssueTooFewPoints {
				detail.Achieved = float64(len(c.Points))
				detail.Required = 2
			}
		}
		details = append(details, detail)
	}

	// QBP gate: duty flow relative to best efficiency flow, bounds inclusive.
	if qbp := duty.QBP(c.BEP); qbp > 0 {
		if qbp < cfg.QBPBounds.Min {
			details = append(details, domain.ExclusionDetail{
				Reason:   domain.ReasonQBPLow,
				Achieved: qbp,
				Required: cfg.QBPBounds.Min,
			})
		} else if qbp > cfg.QBPBounds.Max {
			details = append(details, domain.ExclusionDetail{
				Reason:   domain.ReasonQBPHigh,
				Achieved: qbp,
				Required: cfg.QBPBounds.Max,
			})
		}
	}

	// Suction-safety gate: only when the installation supplied a value and
	// the curve carries NPSH data.
	if duty.SuctionHeadAvailableM != nil && sol.SuctionHeadM > 0 {
		required := cfg.SuctionSafetyFactor * sol.SuctionHeadM
		if *duty.SuctionHeadAvailableM < required {
			details = append(details, domain.ExclusionDetail{
				Reason:   domain.ReasonSuctionMargin,
				Achieved: *duty.SuctionHeadAvailableM,
				Required: required,
			})
		}
	}

	// Trim-bound gate: the converged ratio must be within configured bounds.
	if sol.TrimRatio < cfg.TrimBounds.Min {
		details = append(details, domain.ExclusionDetail{
			Reason:   domain.ReasonTrimBelowMin,
			Achieved: sol.TrimRatio,
			Required: cfg.TrimBounds.Min,
		})
	}

	// Speed-bound gate: absolute RPM, not the ratio.
	if sol.SpeedRPM < cfg.SpeedBoundsRPM.Min {
		details = append(details, domain.ExclusionDetail{
			Reason:   domain.ReasonSpeedBelowMin,
			Achieved: sol.SpeedRPM,
			Required: cfg.SpeedBoundsRPM.Min,
		})
	} else if sol.SpeedRPM > cfg.SpeedBoundsRPM.Max {
		details = append(details, domain.ExclusionDetail{
			Reason:   domain.ReasonSpeedAboveMax,
			Achieved: sol.SpeedRPM,
			Required: cfg.SpeedBoundsRPM.Max,
		})
	}

	// Head-delivery gate.
	if required := cfg.HeadDeliveryTolerance * duty.HeadM; sol.HeadM < required {
		details = append(details, domain.ExclusionDetail{
			Reason:   domain.ReasonHeadShortfall,
			Achieved: sol.HeadM,
			Required: required,
		})
	}

	// Efficiency-floor gate.
	if sol.EfficiencyPct < cfg.EfficiencyFloorPct {
		details = append(details, domain.ExclusionDetail{
			Reason:   domain.ReasonEfficiencyLow,
			Achieved: sol.EfficiencyPct,
			Required: cfg.EfficiencyFloorPct,
		})
	}

	return details
}

func joinIssues(issues []catalog.CurveIssue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = string(issue)
	}
	return strings.Join(parts, ",")
}
