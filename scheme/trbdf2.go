package scheme

import (
	"fmt"
	"math"

	"github.com/meenmo/fdm/boundary"
	"github.com/meenmo/fdm/operator"
)

// TrBDF2Scheme takes a trapezoidal (Craig-Sneyd, θ = μ = 1/2) step over the
// fraction α of dt and closes the step with a BDF2 correction.
type TrBDF2Scheme struct {
	base
	alpha, beta float64
	relTol      float64
	trapezoidal *CraigSneydScheme
}

func NewTrBDF2Scheme(alpha, relTol float64, op operator.Composite, bcs boundary.Set) *TrBDF2Scheme {
	if relTol <= 0 {
		relTol = defaultRelTol
	}
	return &TrBDF2Scheme{
		base:        base{op: op, bcs: bcs},
		alpha:       alpha,
		beta:        (1 - alpha) / (2 - alpha),
		relTol:      relTol,
		trapezoidal: NewCraigSneydScheme(0.5, 0.5, op, bcs),
	}
}

func (s *TrBDF2Scheme) Step(fn []float64, t float64) error {
	if t-s.dt < -negativeTimeTolerance {
		return fmt.Errorf("Step: %w: t=%g dt=%g", ErrNegativeTime, t, s.dt)
	}
	intermediate := s.alpha * s.dt

	fStar := append([]float64(nil), fn...)
	s.trapezoidal.SetStep(intermediate)
	if err := s.trapezoidal.Step(fStar, t); err != nil {
		return err
	}

	s.bcs.SetTime(math.Max(0, t-s.dt))
	s.op.SetTime(math.Max(0, t-s.dt), t-intermediate)

	// f = (fStar/α - (1-α)²/α fn) / (2-α)
	c := (1 - s.alpha) * (1 - s.alpha) / s.alpha
	f := make([]float64, len(fn))
	for i := range f {
		f[i] = (fStar[i]/s.alpha - c*fn[i]) / (2 - s.alpha)
	}

	s.bcs.ApplyBeforeSolving(s.op, f)
	y, err := solveImplicit(s.op, f, s.beta*s.dt, s.relTol)
	if err != nil {
		return err
	}
	s.bcs.ApplyAfterSolving(y)
	copy(fn, y)
	return nil
}
