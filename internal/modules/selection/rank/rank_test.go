package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

func candidate(pumpID string, total, powerKW, qbpPct float64) domain.Candidate {
	return domain.Candidate{
		PumpID:  pumpID,
		CurveID: pumpID + "-c1",
		QBPPct:  qbpPct,
		Solution: domain.Solution{
			PowerKW: powerKW, TrimRatio: 1, SpeedRatio: 1,
		},
		Score: domain.ScoreBreakdown{Total: total},
	}
}

func TestRank_ByScoreDescending(t *testing.T) {
	candidates := []domain.Candidate{
		candidate("p1", 55, 40, 100),
		candidate("p2", 80, 60, 95),
		candidate("p3", 67, 50, 105),
	}

	ranked := Rank(candidates, 10)
	require.Len(t, ranked, 3)
	assert.Equal(t, "p2", ranked[0].PumpID)
	assert.Equal(t, "p3", ranked[1].PumpID)
	assert.Equal(t, "p1", ranked[2].PumpID)
}

func TestRank_TieBreakLowerPowerWins(t *testing.T) {
	// Equal scores, powers 50 and 45: the 45 kW candidate ranks higher
	candidates := []domain.Candidate{
		candidate("p1", 70, 50, 100),
		candidate("p2", 70, 45, 100),
	}

	ranked := Rank(candidates, 10)
	assert.Equal(t, "p2", ranked[0].PumpID)
	assert.Equal(t, "p1", ranked[1].PumpID)
}

func TestRank_TieBreakQBPDeviation(t *testing.T) {
	candidates := []domain.Candidate{
		candidate("p1", 70, 45, 88),  // |88-100| = 12
		candidate("p2", 70, 45, 107), // |107-100| = 7
	}

	ranked := Rank(candidates, 10)
	assert.Equal(t, "p2", ranked[0].PumpID)
}

func TestRank_FullyTiedFallsBackToPumpID(t *testing.T) {
	candidates := []domain.Candidate{
		candidate("zeta", 70, 45, 100),
		candidate("alpha", 70, 45, 100),
	}

	ranked := Rank(candidates, 10)
	assert.Equal(t, "alpha", ranked[0].PumpID)
}

func TestRank_TruncatesToTopK(t *testing.T) {
	candidates := []domain.Candidate{
		candidate("p1", 10, 1, 100),
		candidate("p2", 20, 1, 100),
		candidate("p3", 30, 1, 100),
		candidate("p4", 40, 1, 100),
	}

	ranked := Rank(candidates, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "p4", ranked[0].PumpID)
	assert.Equal(t, "p3", ranked[1].PumpID)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	candidates := []domain.Candidate{
		candidate("p1", 10, 1, 100),
		candidate("p2", 20, 1, 100),
	}

	Rank(candidates, 10)
	assert.Equal(t, "p1", candidates[0].PumpID)
}

func TestSummarize_CountsPerReason(t *testing.T) {
	records := []domain.ExclusionRecord{
		{PumpID: "p1", Details: []domain.ExclusionDetail{
			{Reason: domain.ReasonQBPLow},
			{Reason: domain.ReasonEfficiencyLow},
		}},
		{PumpID: "p2", Details: []domain.ExclusionDetail{
			{Reason: domain.ReasonQBPLow},
		}},
		{PumpID: "p3", Details: []domain.ExclusionDetail{
			{Reason: domain.ReasonNoSolution},
		}},
	}

	summary := Summarize(records)
	assert.Equal(t, 2, summary[domain.ReasonQBPLow])
	assert.Equal(t, 1, summary[domain.ReasonEfficiencyLow])
	assert.Equal(t, 1, summary[domain.ReasonNoSolution])
}

func TestNearMisses_SingleCloseFailure(t *testing.T) {
	records := []domain.ExclusionRecord{
		{PumpID: "p1", PumpName: "Alpha 100", CurveID: "c1", Details: []domain.ExclusionDetail{
			{Reason: domain.ReasonHeadShortfall, Achieved: 47.8, Required: 49.0},
		}},
	}

	misses := NearMisses(records)
	require.Len(t, misses, 1)
	assert.Equal(t, "p1", misses[0].PumpID)
	assert.Equal(t, domain.ReasonHeadShortfall, misses[0].Reason)
	assert.Equal(t, "+1.2 m head", misses[0].MinimalChange)
}

func TestNearMisses_FarFailureIgnored(t *testing.T) {
	records := []domain.ExclusionRecord{
		{PumpID: "p1", Details: []domain.ExclusionDetail{
			{Reason: domain.ReasonHeadShortfall, Achieved: 30, Required: 49},
		}},
	}

	assert.Empty(t, NearMisses(records))
}

func TestNearMisses_MultipleReasonsIgnored(t *testing.T) {
	records := []domain.ExclusionRecord{
		{PumpID: "p1", Details: []domain.ExclusionDetail{
			{Reason: domain.ReasonHeadShortfall, Achieved: 48.5, Required: 49},
			{Reason: domain.ReasonEfficiencyLow, Achieved: 39, Required: 40},
		}},
	}

	assert.Empty(t, NearMisses(records))
}

func TestNearMisses_DataErrorNotNearMissable(t *testing.T) {
	records := []domain.ExclusionRecord{
		{PumpID: "p1", Details: []domain.ExclusionDetail{
			{Reason: domain.ReasonDataError},
		}},
	}

	assert.Empty(t, NearMisses(records))
}

func TestNearMisses_TrimAndSpeedFormats(t *testing.T) {
	records := []domain.ExclusionRecord{
		{PumpID: "p1", Details: []domain.ExclusionDetail{
			{Reason: domain.ReasonTrimBelowMin, Achieved: 0.72, Required: 0.75},
		}},
		{PumpID: "p2", Details: []domain.ExclusionDetail{
			{Reason: domain.ReasonSpeedAboveMax, Achieved: 3700, Required: 3600},
		}},
	}

	misses := NearMisses(records)
	require.Len(t, misses, 2)
	assert.Equal(t, "+0.03 trim ratio", misses[0].MinimalChange)
	assert.Equal(t, "-100 RPM", misses[1].MinimalChange)
}
