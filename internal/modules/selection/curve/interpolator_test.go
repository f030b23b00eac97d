package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
)

// testCurve returns a well-behaved five-point curve with a shutoff point.
func testCurve() *catalog.PerformanceCurve {
	return &catalog.PerformanceCurve{
		ID:                 "c1",
		ImpellerDiameterMM: 250,
		SpeedRPM:           2900,
		Points: []catalog.PerformancePoint{
			{FlowM3H: 0, HeadM: 60, EfficiencyPct: 0, PowerKW: 10, SuctionHeadM: 2.0},
			{FlowM3H: 250, HeadM: 57, EfficiencyPct: 55, PowerKW: 38, SuctionHeadM: 2.5},
			{FlowM3H: 500, HeadM: 52, EfficiencyPct: 72, PowerKW: 52, SuctionHeadM: 3.0},
			{FlowM3H: 750, HeadM: 44, EfficiencyPct: 75, PowerKW: 62, SuctionHeadM: 4.0},
			{FlowM3H: 1000, HeadM: 32, EfficiencyPct: 65, PowerKW: 68, SuctionHeadM: 6.0},
		},
		BEP: catalog.BestEfficiencyPoint{FlowM3H: 750, HeadM: 44, EfficiencyPct: 75},
	}
}

func TestNewInterpolator_TooFewPoints(t *testing.T) {
	c := &catalog.PerformanceCurve{
		ID:     "short",
		Points: []catalog.PerformancePoint{{FlowM3H: 100, HeadM: 50}},
	}

	_, err := NewInterpolator(c, 15)
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestNewInterpolator_DuplicateFlows(t *testing.T) {
	c := &catalog.PerformanceCurve{
		ID: "dup",
		Points: []catalog.PerformancePoint{
			{FlowM3H: 100, HeadM: 50},
			{FlowM3H: 100, HeadM: 48},
		},
	}

	_, err := NewInterpolator(c, 15)
	assert.Error(t, err)
}

func TestAt_HitsMeasuredPoints(t *testing.T) {
	it, err := NewInterpolator(testCurve(), 15)
	require.NoError(t, err)

	// Spline interpolation must reproduce the knots exactly
	for _, p := range testCurve().Points {
		est, err := it.At(p.FlowM3H)
		require.NoError(t, err)
		assert.InDelta(t, p.HeadM, est.HeadM, 1e-9)
		assert.InDelta(t, p.EfficiencyPct, est.EfficiencyPct, 1e-9)
		assert.InDelta(t, p.PowerKW, est.PowerKW, 1e-9)
		assert.InDelta(t, p.SuctionHeadM, est.SuctionHeadM, 1e-9)
		assert.False(t, est.Extrapolated)
	}
}

func TestAt_BetweenPoints(t *testing.T) {
	it, err := NewInterpolator(testCurve(), 15)
	require.NoError(t, err)

	est, err := it.At(625)
	require.NoError(t, err)

	// Monotone cubic stays within the bracketing point values
	assert.Greater(t, est.HeadM, 44.0)
	assert.Less(t, est.HeadM, 52.0)
	assert.False(t, est.Extrapolated)
}

func TestAt_ShutoffPointRetained(t *testing.T) {
	it, err := NewInterpolator(testCurve(), 15)
	require.NoError(t, err)

	est, err := it.At(0)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, est.HeadM, 1e-9)
}

func TestAt_ExtrapolationWithinMargin(t *testing.T) {
	it, err := NewInterpolator(testCurve(), 15)
	require.NoError(t, err)

	// Span is 1000, margin 15% -> evaluable up to 1150
	est, err := it.At(1100)
	require.NoError(t, err)
	assert.True(t, est.Extrapolated)

	// Boundary segment slope: (32-44)/250 per unit flow
	expected := 32.0 + (32.0-44.0)/250.0*100.0
	assert.InDelta(t, expected, est.HeadM, 1e-9)
}

func TestAt_BeyondMarginFails(t *testing.T) {
	it, err := NewInterpolator(testCurve(), 15)
	require.NoError(t, err)

	_, err = it.At(1200)
	assert.ErrorIs(t, err, ErrOutOfDomain)
}

func TestAt_NegativeSideMargin(t *testing.T) {
	c := testCurve()
	c.Points = c.Points[1:] // drop the shutoff point, domain starts at 250

	it, err := NewInterpolator(c, 15)
	require.NoError(t, err)

	est, err := it.At(200)
	require.NoError(t, err)
	assert.True(t, est.Extrapolated)
	assert.Greater(t, est.HeadM, 57.0) // head rises toward shutoff
}

func TestFitSeries_DegradesToQuadratic(t *testing.T) {
	c := &catalog.PerformanceCurve{
		ID: "three",
		Points: []catalog.PerformancePoint{
			{FlowM3H: 0, HeadM: 50, EfficiencyPct: 0, PowerKW: 5},
			{FlowM3H: 500, HeadM: 40, EfficiencyPct: 70, PowerKW: 40},
			{FlowM3H: 1000, HeadM: 20, EfficiencyPct: 60, PowerKW: 60},
		},
	}

	it, err := NewInterpolator(c, 15)
	require.NoError(t, err)

	// Quadratic through (0,50) (500,40) (1000,20): at 250 the value is
	// above the secant midpoints because the curve is concave down.
	est, err := it.At(250)
	require.NoError(t, err)
	assert.InDelta(t, 46.25, est.HeadM, 1e-9)
}

func TestFitSeries_NonMonotonicDegradesToLinear(t *testing.T) {
	c := &catalog.PerformanceCurve{
		ID: "hump",
		Points: []catalog.PerformancePoint{
			{FlowM3H: 0, HeadM: 50},
			{FlowM3H: 250, HeadM: 53}, // head rises: invalid curve shape
			{FlowM3H: 500, HeadM: 45},
			{FlowM3H: 750, HeadM: 35},
		},
	}

	it, err := NewInterpolator(c, 15)
	require.NoError(t, err)
	assert.False(t, it.Monotonic())

	// Linear between (250,53) and (500,45)
	est, err := it.At(375)
	require.NoError(t, err)
	assert.InDelta(t, 49.0, est.HeadM, 1e-9)
}

func TestQuadratic_ExactOnParabola(t *testing.T) {
	// y = x^2 through three points must be reproduced exactly everywhere
	q := newQuadratic([]float64{0, 1, 3}, []float64{0, 1, 9})
	assert.InDelta(t, 4.0, q.Predict(2), 1e-12)
	assert.InDelta(t, 0.25, q.Predict(0.5), 1e-12)
}
