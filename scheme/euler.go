package scheme

import (
	"github.com/meenmo/fdm/boundary"
	"github.com/meenmo/fdm/operator"
)

const defaultRelTol = 1e-8

// ExplicitEulerScheme is forward Euler in backward time: a <- a + dt·L a.
type ExplicitEulerScheme struct {
	base
}

func NewExplicitEulerScheme(op operator.Composite, bcs boundary.Set) *ExplicitEulerScheme {
	return &ExplicitEulerScheme{base: base{op: op, bcs: bcs}}
}

func (s *ExplicitEulerScheme) Step(a []float64, t float64) error {
	return s.step(a, t, 1)
}

func (s *ExplicitEulerScheme) step(a []float64, t, theta float64) error {
	if err := s.setTime(t); err != nil {
		return err
	}
	s.bcs.ApplyBeforeApplying(s.op)
	y := addScaled(a, theta*s.dt, s.op.Apply(a))
	s.bcs.ApplyAfterApplying(y)
	copy(a, y)
	return nil
}

// ImplicitEulerScheme solves (1 - dt·L) a_new = a. Single-direction
// operators are solved directly, others with preconditioned BiCGStab.
type ImplicitEulerScheme struct {
	base
	relTol float64
}

func NewImplicitEulerScheme(op operator.Composite, bcs boundary.Set) *ImplicitEulerScheme {
	return &ImplicitEulerScheme{base: base{op: op, bcs: bcs}, relTol: defaultRelTol}
}

func (s *ImplicitEulerScheme) Step(a []float64, t float64) error {
	return s.step(a, t, 1)
}

func (s *ImplicitEulerScheme) step(a []float64, t, theta float64) error {
	if err := s.setTime(t); err != nil {
		return err
	}
	s.bcs.ApplyBeforeSolving(s.op, a)
	y, err := solveImplicit(s.op, a, theta*s.dt, s.relTol)
	if err != nil {
		return err
	}
	s.bcs.ApplyAfterSolving(y)
	copy(a, y)
	return nil
}

// solveImplicit solves (1 - w·L) x = r.
func solveImplicit(op operator.Composite, r []float64, w, relTol float64) ([]float64, error) {
	if op.Size() == 1 {
		return op.SolveSplitting(0, r, -w)
	}
	solver := biCGStab{
		apply: func(x []float64) []float64 { return addScaled(x, -w, op.Apply(x)) },
		precondition: func(x []float64) ([]float64, error) {
			return op.Preconditioner(x, -w)
		},
		maxIter: 10 * len(r),
		relTol:  relTol,
	}
	x, _, err := solver.solve(r, r)
	return x, err
}

// CrankNicolsonScheme is an explicit Euler step weighted 1-θ followed by an
// implicit Euler step weighted θ.
type CrankNicolsonScheme struct {
	theta    float64
	explicit *ExplicitEulerScheme
	implicit *ImplicitEulerScheme
}

func NewCrankNicolsonScheme(theta float64, op operator.Composite, bcs boundary.Set) *CrankNicolsonScheme {
	return &CrankNicolsonScheme{
		theta:    theta,
		explicit: NewExplicitEulerScheme(op, bcs),
		implicit: NewImplicitEulerScheme(op, bcs),
	}
}

func (s *CrankNicolsonScheme) SetStep(dt float64) {
	s.explicit.SetStep(dt)
	s.implicit.SetStep(dt)
}

func (s *CrankNicolsonScheme) Step(a []float64, t float64) error {
	if s.theta != 1 {
		if err := s.explicit.step(a, t, 1-s.theta); err != nil {
			return err
		}
	}
	if s.theta != 0 {
		if err := s.implicit.step(a, t, s.theta); err != nil {
			return err
		}
	}
	return nil
}
