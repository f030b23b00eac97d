package methods

import "math"

// ratioFunc evaluates the head residual at a candidate ratio. The second
// return value is false when the scaled flow leaves the evaluable domain of
// the curve, which happens routinely near the bracket edges.
type ratioFunc func(ratio float64) (residual float64, ok bool)

// bracketSamples is the grid resolution used to locate a sign change before
// bisection starts. The residual is monotone in the ratio wherever the head
// curve is well behaved, so a coarse scan is enough.
const bracketSamples = 24

// solveRatio finds a ratio in [lo, hi] where f crosses zero, by grid scan
// followed by bounded bisection. Returns the converged ratio and whether the
// search converged within maxIter iterations to within tol of zero residual.
// Non-convergence is an expected outcome, not an error.
func solveRatio(f ratioFunc, lo, hi float64, maxIter int, tol float64) (float64, bool) {
	if lo >= hi || maxIter <= 0 {
		return 0, false
	}

	// Scan for an evaluable subinterval with a sign change.
	step := (hi - lo) / bracketSamples
	var (
		prevX, prevF float64
		prevOK       bool
		a, b, fa     float64
		found        bool
	)
	for i := 0; i <= bracketSamples; i++ {
		x := lo + float64(i)*step
		if i == bracketSamples {
			x = hi
		}
		fx, ok := f(x)
		if ok && math.Abs(fx) <= tol {
			return x, true
		}
		if ok && prevOK && oppositeSigns(prevF, fx) {
			a, b, fa = prevX, x, prevF
			found = true
			break
		}
		prevX, prevF, prevOK = x, fx, ok
	}
	if !found {
		return 0, false
	}

	// Bounded bisection inside the bracket.
	for i := 0; i < maxIter; i++ {
		mid := (a + b) / 2
		fm, ok := f(mid)
		if !ok {
			return 0, false
		}
		if math.Abs(fm) <= tol {
			return mid, true
		}
		if oppositeSigns(fa, fm) {
			b = mid
		} else {
			a, fa = mid, fm
		}
	}

	// Iteration budget exhausted without reaching tolerance.
	return 0, false
}

func oppositeSigns(x, y float64) bool {
	return (x < 0 && y > 0) || (x > 0 && y < 0)
}
