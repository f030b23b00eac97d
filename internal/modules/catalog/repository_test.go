package catalog

import (
	"database/sql"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)
	require.NoError(t, InitSchema(db))
	return db
}

func samplePump(id string) *PumpModel {
	return &PumpModel{
		ID:   id,
		Name: "Test 200-150",
		Type: PumpTypeEndSuction,
		Curves: []PerformanceCurve{{
			ID:                 id + "-c1",
			ImpellerDiameterMM: 250,
			SpeedRPM:           2900,
			Points: []PerformancePoint{
				{FlowM3H: 0, HeadM: 60, PowerKW: 10, SuctionHeadM: 2.0},
				{FlowM3H: 500, HeadM: 52, EfficiencyPct: 72, PowerKW: 52, SuctionHeadM: 3.0},
				{FlowM3H: 1000, HeadM: 32, EfficiencyPct: 65, PowerKW: 68, SuctionHeadM: 6.0},
			},
			BEP: BestEfficiencyPoint{FlowM3H: 750, HeadM: 44, EfficiencyPct: 75},
		}},
	}
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo := NewRepository(testDB(t), zerolog.Nop())

	pump := samplePump("p1")
	require.NoError(t, repo.SaveModel(pump))

	got, err := repo.GetModel("p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pump.Name, got.Name)
	assert.Equal(t, PumpTypeEndSuction, got.Type)
	require.Len(t, got.Curves, 1)
	assert.Equal(t, "p1-c1", got.Curves[0].ID)
	assert.Equal(t, 2900.0, got.Curves[0].SpeedRPM)
	assert.Equal(t, pump.Curves[0].BEP, got.Curves[0].BEP)
	require.Len(t, got.Curves[0].Points, 3)
	assert.Equal(t, pump.Curves[0].Points, got.Curves[0].Points)
}

func TestRepository_GetUnknownReturnsNil(t *testing.T) {
	repo := NewRepository(testDB(t), zerolog.Nop())

	got, err := repo.GetModel("missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_SaveReplacesExisting(t *testing.T) {
	repo := NewRepository(testDB(t), zerolog.Nop())

	require.NoError(t, repo.SaveModel(samplePump("p1")))

	updated := samplePump("p1")
	updated.Name = "Test 250-200"
	updated.Curves[0].Points = updated.Curves[0].Points[:2]
	require.NoError(t, repo.SaveModel(updated))

	got, err := repo.GetModel("p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Test 250-200", got.Name)
	require.Len(t, got.Curves, 1)
	assert.Len(t, got.Curves[0].Points, 2)

	n, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRepository_SaveRejectsInvalid(t *testing.T) {
	repo := NewRepository(testDB(t), zerolog.Nop())

	err := repo.SaveModel(&PumpModel{ID: "p1", Name: "no curves"})
	assert.Error(t, err)
}

func TestRepository_GetAllModelsOrdered(t *testing.T) {
	repo := NewRepository(testDB(t), zerolog.Nop())

	require.NoError(t, repo.SaveModel(samplePump("p2")))
	require.NoError(t, repo.SaveModel(samplePump("p1")))

	models, err := repo.GetAllModels()
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "p1", models[0].ID)
	assert.Equal(t, "p2", models[1].ID)
	assert.Len(t, models[0].Curves, 1)
}

func TestRepository_DeleteCascades(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db, zerolog.Nop())

	require.NoError(t, repo.SaveModel(samplePump("p1")))

	deleted, err := repo.DeleteModel("p1")
	require.NoError(t, err)
	assert.True(t, deleted)

	var curves, points int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM performance_curves").Scan(&curves))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM performance_points").Scan(&points))
	assert.Equal(t, 0, curves)
	assert.Equal(t, 0, points)

	deleted, err = repo.DeleteModel("p1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestService_GenerationBumpsOnWrite(t *testing.T) {
	repo := NewRepository(testDB(t), zerolog.Nop())
	svc := NewService(repo, zerolog.Nop())

	models, gen1, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, models)

	require.NoError(t, svc.SaveModel(samplePump("p1")))

	models, gen2, err := svc.Snapshot()
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Greater(t, gen2, gen1)

	// Reads without writes keep the generation stable
	_, gen3, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, gen2, gen3)
}

func TestService_DeleteRefreshesSnapshot(t *testing.T) {
	repo := NewRepository(testDB(t), zerolog.Nop())
	svc := NewService(repo, zerolog.Nop())

	require.NoError(t, svc.SaveModel(samplePump("p1")))

	deleted, err := svc.DeleteModel("p1")
	require.NoError(t, err)
	assert.True(t, deleted)

	models, _, err := svc.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestCurveValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PerformanceCurve)
		want   []CurveIssue
	}{
		{
			name:   "valid curve",
			mutate: func(c *PerformanceCurve) {},
			want:   nil,
		},
		{
			name: "too few points",
			mutate: func(c *PerformanceCurve) {
				c.Points = c.Points[:1]
			},
			want: []CurveIssue{IssueTooFewPoints},
		},
		{
			name: "unsorted flow",
			mutate: func(c *PerformanceCurve) {
				c.Points[0], c.Points[1] = c.Points[1], c.Points[0]
			},
			want: []CurveIssue{IssueUnsortedFlow, IssueHeadNotMonotonic},
		},
		{
			name: "rising head",
			mutate: func(c *PerformanceCurve) {
				c.Points[2].HeadM = 70
			},
			want: []CurveIssue{IssueHeadNotMonotonic},
		},
		{
			name: "missing bep",
			mutate: func(c *PerformanceCurve) {
				c.BEP = BestEfficiencyPoint{}
			},
			want: []CurveIssue{IssueMissingBEP},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := samplePump("p1").Curves[0]
			tt.mutate(&c)
			assert.Equal(t, tt.want, c.Validate())
		})
	}
}
