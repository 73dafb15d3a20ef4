package scheme

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/fdm/boundary"
	"github.com/meenmo/fdm/operator"
)

const (
	maxRungeKuttaSteps = 1_000_000
	// integrator steps below this fraction of dt count as underflow
	minRelStepSize = 1e-12
)

// MethodOfLinesScheme integrates the semi-discrete system dU/dt = -L U
// backward over each time step with an adaptive Runge-Kutta method.
type MethodOfLinesScheme struct {
	base
	eps             float64
	relInitStepSize float64
	stats           Statistics
}

// NewMethodOfLinesScheme uses relative tolerance eps and an initial
// integrator step of relInitStepSize·dt.
func NewMethodOfLinesScheme(eps, relInitStepSize float64, op operator.Composite, bcs boundary.Set) *MethodOfLinesScheme {
	return &MethodOfLinesScheme{
		base:            base{op: op, bcs: bcs},
		eps:             eps,
		relInitStepSize: relInitStepSize,
	}
}

// Statistics accumulates the integrator work across all steps.
func (s *MethodOfLinesScheme) Statistics() Statistics { return s.stats }

func (s *MethodOfLinesScheme) Step(a []float64, t float64) error {
	if t-s.dt < -negativeTimeTolerance {
		return fmt.Errorf("Step: %w: t=%g dt=%g", ErrNegativeTime, t, s.dt)
	}
	rhs := func(tau float64, r []float64) []float64 {
		s.op.SetTime(tau, tau)
		s.bcs.SetTime(tau)
		s.bcs.ApplyBeforeApplying(s.op)
		dr := s.op.Apply(r)
		floats.Scale(-1, dr)
		return dr
	}
	rk := adaptiveRK{
		tab:      dormandPrince(),
		eps:      s.eps,
		h1:       s.relInitStepSize * s.dt,
		hMin:     minRelStepSize * s.dt,
		maxSteps: maxRungeKuttaSteps,
	}
	y, err := rk.integrate(rhs, a, t, math.Max(0, t-s.dt))
	s.stats.StepCount += rk.stats.StepCount
	s.stats.RejectedCount += rk.stats.RejectedCount
	s.stats.EvaluationCount += rk.stats.EvaluationCount
	s.stats.LastStepSize = rk.stats.LastStepSize
	if err != nil {
		return err
	}
	s.bcs.ApplyAfterApplying(y)
	copy(a, y)
	return nil
}
