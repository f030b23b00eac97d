package selection

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
	"github.com/pumplab/pumpselect/internal/modules/selection/domain"
)

func historyDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, InitHistorySchema(db))
	return db
}

func sampleResult() *domain.SelectionResult {
	return &domain.SelectionResult{
		Candidates: []domain.Candidate{{
			PumpID:   "alpha",
			PumpName: "Alpha 200-150",
			CurveID:  "alpha-c1",
			QBPPct:   100,
			Solution: domain.Solution{
				Method:     domain.MethodDirect,
				FlowM3H:    750,
				HeadM:      44,
				TrimRatio:  1,
				SpeedRatio: 1,
				SpeedRPM:   2900,
			},
			Score: domain.ScoreBreakdown{
				Components: map[string]float64{"bep_proximity": 40},
				Penalties:  map[string]float64{},
				Total:      82.5,
			},
		}},
		Summary:   map[domain.ExclusionReason]int{},
		Evaluated: 1,
	}
}

func TestHistoryRepository_StoreAndGet(t *testing.T) {
	repo := NewHistoryRepository(historyDB(t))

	avail := 6.0
	duty := domain.DutyRequirement{
		FlowM3H:               750,
		HeadM:                 44,
		SuctionHeadAvailableM: &avail,
		PumpType:              catalog.PumpTypeEndSuction,
	}

	id, err := repo.Store(duty, sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	entry, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, duty.FlowM3H, entry.Duty.FlowM3H)
	assert.Equal(t, duty.PumpType, entry.Duty.PumpType)
	require.NotNil(t, entry.Duty.SuctionHeadAvailableM)
	assert.Equal(t, 6.0, *entry.Duty.SuctionHeadAvailableM)
	require.Len(t, entry.Result.Candidates, 1)
	assert.Equal(t, "alpha", entry.Result.Candidates[0].PumpID)
	assert.Equal(t, 82.5, entry.Result.Candidates[0].Score.Total)
}

func TestHistoryRepository_GetUnknown(t *testing.T) {
	repo := NewHistoryRepository(historyDB(t))

	_, err := repo.Get("no-such-id")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestHistoryRepository_Recent(t *testing.T) {
	db := historyDB(t)
	repo := NewHistoryRepository(db)

	duty := domain.DutyRequirement{FlowM3H: 750, HeadM: 44}
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := repo.Store(duty, sampleResult())
		require.NoError(t, err)
		ids = append(ids, id)
	}
	// Spread the timestamps so ordering is unambiguous
	for i, id := range ids {
		_, err := db.Exec(`UPDATE selection_history SET created_at = ? WHERE id = ?`, 1000+i, id)
		require.NoError(t, err)
	}

	entries, err := repo.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ids[2], entries[0].ID)
	assert.Equal(t, ids[1], entries[1].ID)
	assert.Equal(t, 750.0, entries[0].Duty.FlowM3H)
	// Recent is a listing, payloads stay undecoded
	assert.Nil(t, entries[0].Result)
}

func TestHistoryRepository_Purge(t *testing.T) {
	db := historyDB(t)
	repo := NewHistoryRepository(db)

	duty := domain.DutyRequirement{FlowM3H: 750, HeadM: 44}
	oldID, err := repo.Store(duty, sampleResult())
	require.NoError(t, err)
	newID, err := repo.Store(duty, sampleResult())
	require.NoError(t, err)

	cutoff := time.Now().Add(-24 * time.Hour)
	_, err = db.Exec(`UPDATE selection_history SET created_at = ? WHERE id = ?`,
		cutoff.Add(-time.Hour).Unix(), oldID)
	require.NoError(t, err)

	purged, err := repo.Purge(cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.Get(oldID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = repo.Get(newID)
	assert.NoError(t, err)
}
