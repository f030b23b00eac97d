// Package curve estimates pump performance at arbitrary flows from the
// measured points of a single performance curve.
//
// Interpolation basis depends on how much data the curve carries: four or
// more points use Fritsch-Butland monotone cubic splines (gonum/interp),
// three points use a quadratic through all three, two points use a straight
// line. A curve whose head is not non-increasing with flow degrades to linear
// interpolation for every series; the feasibility gate excludes such curves,
// but the degraded estimates keep near-miss reporting meaningful.
package curve

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/pumplab/pumpselect/internal/modules/catalog"
)

var (
	// ErrTooFewPoints means the curve cannot be evaluated at all.
	ErrTooFewPoints = errors.New("curve has fewer than 2 points")
	// ErrOutOfDomain means the flow lies beyond the domain plus the margin.
	ErrOutOfDomain = errors.New("flow outside curve domain and extrapolation margin")
)

// Estimate is the interpolated operating condition at one flow.
type Estimate struct {
	FlowM3H       float64
	HeadM         float64
	EfficiencyPct float64
	PowerKW       float64
	SuctionHeadM  float64
	Extrapolated  bool // within margin but outside the measured domain
}

// Interpolator evaluates one performance curve. Construct once per curve and
// reuse; it is read-only after construction and safe for concurrent use.
type Interpolator struct {
	head      interp.Predictor
	eff       interp.Predictor
	power     interp.Predictor
	suction   interp.Predictor
	flowMin   float64
	flowMax   float64
	margin    float64 // absolute flow margin beyond the domain
	monotonic bool
	points    []catalog.PerformancePoint
}

// NewInterpolator builds an interpolator for the curve with the given
// extrapolation margin (percent of the curve's flow span).
func NewInterpolator(c *catalog.PerformanceCurve, marginPct float64) (*Interpolator, error) {
	n := len(c.Points)
	if n < 2 {
		return nil, ErrTooFewPoints
	}

	flows := make([]float64, n)
	heads := make([]float64, n)
	effs := make([]float64, n)
	powers := make([]float64, n)
	suctions := make([]float64, n)
	for i, p := range c.Points {
		flows[i] = p.FlowM3H
		heads[i] = p.HeadM
		effs[i] = p.EfficiencyPct
		powers[i] = p.PowerKW
		suctions[i] = p.SuctionHeadM
	}

	for i := 1; i < n; i++ {
		if flows[i] <= flows[i-1] {
			return nil, fmt.Errorf("curve %s: flows not strictly increasing at point %d", c.ID, i)
		}
	}

	monotonic := c.HeadMonotonic()

	it := &Interpolator{
		flowMin:   flows[0],
		flowMax:   flows[n-1],
		monotonic: monotonic,
		points:    c.Points,
	}
	it.margin = (it.flowMax - it.flowMin) * marginPct / 100

	var err error
	if it.head, err = fitSeries(flows, heads, monotonic); err != nil {
		return nil, fmt.Errorf("curve %s: head series: %w", c.ID, err)
	}
	if it.eff, err = fitSeries(flows, effs, monotonic); err != nil {
		return nil, fmt.Errorf("curve %s: efficiency series: %w", c.ID, err)
	}
	if it.power, err = fitSeries(flows, powers, monotonic); err != nil {
		return nil, fmt.Errorf("curve %s: power series: %w", c.ID, err)
	}
	if it.suction, err = fitSeries(flows, suctions, monotonic); err != nil {
		return nil, fmt.Errorf("curve %s: suction head series: %w", c.ID, err)
	}

	return it, nil
}

// fitSeries picks the interpolation basis for one series. A curve flagged
// non-monotonic is held to linear regardless of point count.
func fitSeries(xs, ys []float64, monotonic bool) (interp.Predictor, error) {
	switch {
	case len(xs) >= 4 && monotonic:
		fb := &interp.FritschButland{}
		if err := fb.Fit(xs, ys); err != nil {
			return nil, err
		}
		return fb, nil
	case len(xs) == 3 && monotonic:
		return newQuadratic(xs, ys), nil
	default:
		pl := &interp.PiecewiseLinear{}
		if err := pl.Fit(xs, ys); err != nil {
			return nil, err
		}
		return pl, nil
	}
}

// Domain returns the measured flow range of the curve.
func (it *Interpolator) Domain() (min, max float64) {
	return it.flowMin, it.flowMax
}

// InDomain reports whether the flow lies within the measured domain.
func (it *Interpolator) InDomain(flow float64) bool {
	return flow >= it.flowMin && flow <= it.flowMax
}

// WithinMargin reports whether the flow lies inside domain plus margin.
func (it *Interpolator) WithinMargin(flow float64) bool {
	return flow >= it.flowMin-it.margin && flow <= it.flowMax+it.margin
}

// Monotonic reports whether the head series passed the monotonicity check.
func (it *Interpolator) Monotonic() bool {
	return it.monotonic
}

// At estimates head, efficiency, power, and suction head required at the
// given flow. Flows inside the domain are interpolated; flows within the
// margin are extrapolated linearly along the boundary segment's slope and
// tagged. Anything further out fails with ErrOutOfDomain.
func (it *Interpolator) At(flow float64) (Estimate, error) {
	if it.InDomain(flow) {
		return Estimate{
			FlowM3H:       flow,
			HeadM:         it.head.Predict(flow),
			EfficiencyPct: it.eff.Predict(flow),
			PowerKW:       it.power.Predict(flow),
			SuctionHeadM:  it.suction.Predict(flow),
		}, nil
	}

	if !it.WithinMargin(flow) {
		return Estimate{}, ErrOutOfDomain
	}

	n := len(it.points)
	var a, b catalog.PerformancePoint
	if flow < it.flowMin {
		a, b = it.points[0], it.points[1]
	} else {
		a, b = it.points[n-2], it.points[n-1]
	}
	dq := b.FlowM3H - a.FlowM3H

	extend := func(ya, yb float64) float64 {
		slope := (yb - ya) / dq
		if flow < it.flowMin {
			return ya + slope*(flow-a.FlowM3H)
		}
		return yb + slope*(flow-b.FlowM3H)
	}

	return Estimate{
		FlowM3H:       flow,
		HeadM:         extend(a.HeadM, b.HeadM),
		EfficiencyPct: extend(a.EfficiencyPct, b.EfficiencyPct),
		PowerKW:       extend(a.PowerKW, b.PowerKW),
		SuctionHeadM:  extend(a.SuctionHeadM, b.SuctionHeadM),
		Extrapolated:  true,
	}, nil
}

// quadratic is a single quadratic through exactly three points, used when a
// curve has too few points for a cubic fit. Lagrange form; no gonum type
// covers the three-point case with a quadratic basis.
type quadratic struct {
	xs [3]float64
	ys [3]float64
}

func newQuadratic(xs, ys []float64) *quadratic {
	q := &quadratic{}
	copy(q.xs[:], xs)
	copy(q.ys[:], ys)
	return q
}

// Predict evaluates the quadratic at x.
func (q *quadratic) Predict(x float64) float64 {
	x0, x1, x2 := q.xs[0], q.xs[1], q.xs[2]
	l0 := (x - x1) * (x - x2) / ((x0 - x1) * (x0 - x2))
	l1 := (x - x0) * (x - x2) / ((x1 - x0) * (x1 - x2))
	l2 := (x - x0) * (x - x1) / ((x2 - x0) * (x2 - x1))
	return q.ys[0]*l0 + q.ys[1]*l1 + q.ys[2]*l2
}
