package scheme

import (
	"errors"
	"fmt"
	"math"
)

// ErrStepSize is returned when the adaptive integrator cannot keep the
// error within tolerance.
var ErrStepSize = errors.New("scheme: adaptive step size underflow")

// tableau is an embedded explicit Runge-Kutta pair: b gives the solution,
// bErr the difference to the embedded lower order solution.
type tableau struct {
	name  string
	order int
	c     []float64
	a     [][]float64
	b     []float64
	bErr  []float64
}

// dormandPrince is the Dormand-Prince 5(4) pair.
func dormandPrince() tableau {
	return tableau{
		name:  "DormandPrince54",
		order: 5,
		c:     []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
		a: [][]float64{
			{},
			{1.0 / 5},
			{3.0 / 40, 9.0 / 40},
			{44.0 / 45, -56.0 / 15, 32.0 / 9},
			{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
			{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
			{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
		},
		b: []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
		bErr: []float64{
			35.0/384 - 5179.0/57600,
			0,
			500.0/1113 - 7571.0/16695,
			125.0/192 - 393.0/640,
			-2187.0/6784 + 92097.0/339200,
			11.0/84 - 187.0/2100,
			-1.0 / 40,
		},
	}
}

// Statistics counts the work of the adaptive integrator.
type Statistics struct {
	StepCount       int
	RejectedCount   int
	EvaluationCount int
	LastStepSize    float64
}

const (
	rkSafety = 0.9
	rkGrow   = -0.2
	rkShrink = -0.25
	rkErrCon = 1.89e-4
	rkTiny   = 1e-30
)

// adaptiveRK integrates dy/dt = f(t, y) with error control relative to
// |y| + |h dy/dt|. Proposed steps no longer than hMin fail with
// ErrStepSize unless they finish the interval.
type adaptiveRK struct {
	tab      tableau
	eps      float64
	h1       float64
	hMin     float64
	maxSteps int
	stats    Statistics
}

type rhsFunc func(t float64, y []float64) []float64

func (rk *adaptiveRK) eval(f rhsFunc, t float64, y []float64) []float64 {
	rk.stats.EvaluationCount++
	return f(t, y)
}

// integrate carries y0 from t1 to t2; t2 may lie before t1.
func (rk *adaptiveRK) integrate(f rhsFunc, y0 []float64, t1, t2 float64) ([]float64, error) {
	y := append([]float64(nil), y0...)
	h := math.Copysign(math.Abs(rk.h1), t2-t1)
	if rk.h1 == 0 {
		h = t2 - t1
	}
	x := t1
	yScale := make([]float64, len(y))

	for step := 0; step < rk.maxSteps; step++ {
		dydx := rk.eval(f, x, y)
		for i := range y {
			yScale[i] = math.Abs(y[i]) + math.Abs(h*dydx[i]) + rkTiny
		}
		if (x+h-t2)*(x+h-t1) > 0 {
			h = t2 - x
		}
		var (
			hNext float64
			err   error
		)
		if y, x, hNext, err = rk.adaptiveStep(f, y, dydx, x, h, yScale); err != nil {
			return nil, err
		}
		if (x-t2)*(t2-t1) >= 0 {
			return y, nil
		}
		if math.Abs(hNext) <= rk.hMin && math.Abs(t2-x) > rk.hMin {
			return nil, fmt.Errorf("integrate: %w: step %g at t=%g", ErrStepSize, hNext, x)
		}
		h = hNext
	}
	return nil, fmt.Errorf("integrate: %w: more than %d steps", ErrStepSize, rk.maxSteps)
}

func (rk *adaptiveRK) adaptiveStep(f rhsFunc, y, dydx []float64, x, h float64, yScale []float64) ([]float64, float64, float64, error) {
	for {
		yOut, yErr := rk.trial(f, y, dydx, x, h)
		errMax := 0.0
		for i := range yErr {
			errMax = math.Max(errMax, math.Abs(yErr[i]/yScale[i]))
		}
		errMax /= rk.eps
		if errMax <= 1 {
			rk.stats.StepCount++
			rk.stats.LastStepSize = h
			hNext := 5 * h
			if errMax > rkErrCon {
				hNext = rkSafety * h * math.Pow(errMax, rkGrow)
			}
			return yOut, x + h, hNext, nil
		}
		rk.stats.RejectedCount++
		hTemp := rkSafety * h * math.Pow(errMax, rkShrink)
		h = math.Copysign(math.Max(math.Abs(hTemp), 0.1*math.Abs(h)), h)
		if x+h == x {
			return nil, x, h, fmt.Errorf("adaptiveStep: %w at t=%g", ErrStepSize, x)
		}
	}
}

// trial takes one step of size h and returns the solution and the error estimate.
func (rk *adaptiveRK) trial(f rhsFunc, y, dydx []float64, x, h float64) ([]float64, []float64) {
	n := len(y)
	k := make([][]float64, len(rk.tab.c))
	k[0] = dydx
	tmp := make([]float64, n)
	for s := 1; s < len(k); s++ {
		copy(tmp, y)
		for j, a := range rk.tab.a[s] {
			if a != 0 {
				for i := range tmp {
					tmp[i] += h * a * k[j][i]
				}
			}
		}
		k[s] = rk.eval(f, x+rk.tab.c[s]*h, tmp)
	}
	yOut := append([]float64(nil), y...)
	yErr := make([]float64, n)
	for s := range k {
		b, e := rk.tab.b[s], rk.tab.bErr[s]
		for i := range yOut {
			yOut[i] += h * b * k[s][i]
			yErr[i] += h * e * k[s][i]
		}
	}
	return yOut, yErr
}
