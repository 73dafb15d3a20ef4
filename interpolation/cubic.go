// Package interpolation provides the spline the solvers fit over a
// rolled-back grid to read prices and greeks between mesh nodes.
package interpolation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

var (
	// ErrTooFewPoints is returned for fewer than two nodes.
	ErrTooFewPoints = errors.New("interpolation: too few points")
	// ErrInvalidNodes is returned for unsorted nodes or mismatched lengths.
	ErrInvalidNodes = errors.New("interpolation: invalid nodes")
)

// MonotonicCubic is a natural cubic spline whose node derivatives are passed
// through the Hyman monotonicity filter, so the interpolant does not
// overshoot where the data is monotone. Outside the node range the value is
// held flat.
type MonotonicCubic struct {
	xs     []float64
	ys     []float64
	dydxs  []float64
	filter []bool
	cubic  interp.PiecewiseCubic
}

// NewMonotonicCubic fits the spline through (xs, ys).
func NewMonotonicCubic(xs, ys []float64) (*MonotonicCubic, error) {
	n := len(xs)
	if n < 2 {
		return nil, fmt.Errorf("NewMonotonicCubic: %w: %d nodes", ErrTooFewPoints, n)
	}
	if len(ys) != n {
		return nil, fmt.Errorf("NewMonotonicCubic: %w: %d abscissae, %d values", ErrInvalidNodes, n, len(ys))
	}
	for i := 1; i < n; i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("NewMonotonicCubic: %w: x[%d]=%g after %g", ErrInvalidNodes, i, xs[i], xs[i-1])
		}
	}

	var natural interp.NaturalCubic
	if err := natural.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("NewMonotonicCubic: %w", err)
	}
	d := make([]float64, n)
	for i, x := range xs {
		d[i] = natural.PredictDerivative(x)
	}

	s := &MonotonicCubic{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
	}
	s.dydxs, s.filter = hymanFilter(s.xs, s.ys, d)
	s.cubic.FitWithDerivatives(s.xs, s.ys, s.dydxs)
	return s, nil
}

// Value interpolates at x.
func (s *MonotonicCubic) Value(x float64) float64 { return s.cubic.Predict(x) }

// Derivative is the first derivative at x.
func (s *MonotonicCubic) Derivative(x float64) float64 {
	if x < s.xs[0] || x > s.xs[len(s.xs)-1] {
		return 0
	}
	return s.cubic.PredictDerivative(x)
}

// SecondDerivative is the second derivative at x, taken from the cubic of
// the segment containing x.
func (s *MonotonicCubic) SecondDerivative(x float64) float64 {
	n := len(s.xs)
	if x < s.xs[0] || x > s.xs[n-1] {
		return 0
	}
	i := sort.SearchFloat64s(s.xs, x) - 1
	if i < 0 {
		i = 0
	}
	if i > n-2 {
		i = n - 2
	}
	dx := s.xs[i+1] - s.xs[i]
	dy := s.ys[i+1] - s.ys[i]
	a2 := (3*dy - (2*s.dydxs[i]+s.dydxs[i+1])*dx) / (dx * dx)
	a3 := (-2*dy + (s.dydxs[i]+s.dydxs[i+1])*dx) / (dx * dx * dx)
	return 2*a2 + 6*a3*(x-s.xs[i])
}

// Adjusted reports which node derivatives the monotonicity filter changed.
func (s *MonotonicCubic) Adjusted() []bool { return append([]bool(nil), s.filter...) }

// hymanFilter limits the node derivatives d so that the Hermite cubics stay
// monotone on monotone stretches of the data (Hyman 1983, with the
// Dougherty-Edelman-Hyman extension on interior nodes).
func hymanFilter(xs, ys, d []float64) ([]float64, []bool) {
	n := len(xs)
	out := append([]float64(nil), d...)
	changed := make([]bool, n)
	if n < 3 {
		return out, changed
	}

	dx := make([]float64, n-1)
	S := make([]float64, n-1)
	for i := range dx {
		dx[i] = xs[i+1] - xs[i]
		S[i] = (ys[i+1] - ys[i]) / dx[i]
	}

	limit := func(v, m float64) float64 { return math.Copysign(math.Min(math.Abs(v), m), v) }

	for i := 0; i < n; i++ {
		var c float64
		switch {
		case i == 0:
			if out[i]*S[0] > 0 {
				c = limit(out[i], math.Abs(3*S[0]))
			}
		case i == n-1:
			if out[i]*S[n-2] > 0 {
				c = limit(out[i], math.Abs(3*S[n-2]))
			}
		default:
			pm := (S[i-1]*dx[i] + S[i]*dx[i-1]) / (dx[i-1] + dx[i])
			M := 3 * math.Min(math.Min(math.Abs(S[i-1]), math.Abs(S[i])), math.Abs(pm))
			if i > 1 && (S[i-1]-S[i-2])*(S[i]-S[i-1]) > 0 {
				pd := (S[i-1]*(2*dx[i-1]+dx[i-2]) - S[i-2]*dx[i-1]) / (dx[i-2] + dx[i-1])
				if pm*pd > 0 && pm*(S[i-1]-S[i-2]) > 0 {
					M = math.Max(M, 1.5*math.Min(math.Abs(pm), math.Abs(pd)))
				}
			}
			if i < n-2 && (S[i]-S[i-1])*(S[i+1]-S[i]) > 0 {
				pu := (S[i]*(2*dx[i]+dx[i+1]) - S[i+1]*dx[i]) / (dx[i] + dx[i+1])
				if pm*pu > 0 && -pm*(S[i]-S[i-1]) > 0 {
					M = math.Max(M, 1.5*math.Min(math.Abs(pm), math.Abs(pu)))
				}
			}
			if out[i]*pm > 0 {
				c = limit(out[i], M)
			}
		}
		if c != out[i] {
			out[i] = c
			changed[i] = true
		}
	}
	return out, changed
}
