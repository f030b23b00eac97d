// Package rank orders feasible candidates, aggregates exclusions, and
// identifies near-misses.
package rank

import (
	"fmt"
	"math"
	"sort"

	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

// Near-miss closeness thresholds per gate.
const (
	nearMissHeadFrac    = 0.05 // head deficit within 5% of required
	nearMissQBP         = 0.05 // QBP ratio within 0.05 of the bound
	nearMissSuctionFrac = 0.10 // suction deficit within 10% of required
	nearMissTrim        = 0.05 // trim ratio within 0.05 of the minimum
	nearMissSpeedFrac   = 0.05 // RPM within 5% of the bound
	nearMissEfficiency  = 5.0  // efficiency within 5 points of the floor
)

// Rank sorts candidates by total score descending and truncates to topK.
// Tie-break 1: lower achieved power wins. Tie-break 2: smaller |QBP% - 100|
// wins. A final pump-id comparison keeps the order fully deterministic.
func Rank(candidates []domain.Candidate, topK int) []domain.Candidate {
	ranked := make([]domain.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		if a.Solution.PowerKW != b.Solution.PowerKW {
			return a.Solution.PowerKW < b.Solution.PowerKW
		}
		devA := math.Abs(a.QBPPct - 100)
		devB := math.Abs(b.QBPPct - 100)
		if devA != devB {
			return devA < devB
		}
		return a.PumpID < b.PumpID
	})

	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

// Summarize counts exclusion records per reason. A record with several
// reasons contributes to every one of them.
func Summarize(records []domain.ExclusionRecord) map[domain.ExclusionReason]int {
	summary := make(map[domain.ExclusionReason]int)
	for i := range records {
		for _, d := range records[i].Details {
			summary[d.Reason]++
		}
	}
	return summary
}

// NearMisses returns the excluded pumps that failed exactly one gate by a
// small margin, annotated with the minimal change that would have made them
// feasible. Records are scanned in input order, keeping the result
// deterministic.
func NearMisses(records []domain.ExclusionRecord) []domain.NearMiss {
	var misses []domain.NearMiss
	for i := range records {
		rec := &records[i]
		if len(rec.Details) != 1 {
			continue
		}
		change, ok := minimalChange(rec.Details[0])
		if !ok {
			continue
		}
		misses = append(misses, domain.NearMiss{
			PumpID:        rec.PumpID,
			PumpName:      rec.PumpName,
			CurveID:       rec.CurveID,
			Reason:        rec.Details[0].Reason,
			MinimalChange: change,
		})
	}
	return misses
}

// minimalChange formats the smallest adjustment that would flip the failed
// gate, when the miss is close enough to count.
func minimalChange(d domain.ExclusionDetail) (string, bool) {
	switch d.Reason {
	case domain.ReasonHeadShortfall:
		deficit := d.Required - d.Achieved
		if d.Required <= 0 || deficit > nearMissHeadFrac*d.Required {
			return "", false
		}
		return fmt.Sprintf("+%.1f m head", deficit), true

	case domain.ReasonQBPLow:
		deficit := d.Required - d.Achieved
		if deficit > nearMissQBP {
			return "", false
		}
		return fmt.Sprintf("+%.1f%% QBP", deficit*100), true

	case domain.ReasonQBPHigh:
		excess := d.Achieved - d.Required
		if excess > nearMissQBP {
			return "", false
		}
		return fmt.Sprintf("-%.1f%% QBP", excess*100), true

	case domain.ReasonSuctionMargin:
		deficit := d.Required - d.Achieved
		if d.Required <= 0 || deficit > nearMissSuctionFrac*d.Required {
			return "", false
		}
		return fmt.Sprintf("+%.1f m suction head available", deficit), true

	case domain.ReasonTrimBelowMin:
		deficit := d.Required - d.Achieved
		if deficit > nearMissTrim {
			return "", false
		}
		return fmt.Sprintf("+%.2f trim ratio", deficit), true

	case domain.ReasonSpeedBelowMin:
		deficit := d.Required - d.Achieved
		if d.Required <= 0 || deficit > nearMissSpeedFrac*d.Required {
			return "", false
		}
		return fmt.Sprintf("+%.0f RPM", deficit), true

	case domain.ReasonSpeedAboveMax:
		excess := d.Achieved - d.Required
		if d.Required <= 0 || excess > nearMissSpeedFrac*d.Required {
			return "", false
		}
		return fmt.Sprintf("-%.0f RPM", excess), true

	case domain.ReasonEfficiencyLow:
		deficit := d.Required - d.Achieved
		if deficit > nearMissEfficiency {
			return "", false
		}
		return fmt.Sprintf("+%.1f%% efficiency", deficit), true

	default:
		// Data and validity failures are not near-missable.
		return "", false
	}
}
