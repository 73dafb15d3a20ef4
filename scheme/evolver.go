package scheme

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/meenmo/fdm/boundary"
	"github.com/meenmo/fdm/operator"
)

// Evolver advances a grid backward by one time step.
type Evolver interface {
	// SetStep sets the step length dt.
	SetStep(dt float64)
	// Step evolves a in place from t to t - dt.
	Step(a []float64, t float64) error
}

// NewEvolver builds the evolver described by desc.
func NewEvolver(desc Desc, op operator.Composite, bcs boundary.Set) (Evolver, error) {
	switch desc.Type {
	case Douglas:
		return NewDouglasScheme(desc.Theta, op, bcs), nil
	case CraigSneyd:
		return NewCraigSneydScheme(desc.Theta, desc.Mu, op, bcs), nil
	case ModifiedCraigSneyd:
		return NewModifiedCraigSneydScheme(desc.Theta, desc.Mu, op, bcs), nil
	case Hundsdorfer:
		return NewHundsdorferScheme(desc.Theta, desc.Mu, op, bcs), nil
	case ExplicitEuler:
		return NewExplicitEulerScheme(op, bcs), nil
	case ImplicitEuler:
		return NewImplicitEulerScheme(op, bcs), nil
	case CrankNicolson:
		return NewCrankNicolsonScheme(desc.Theta, op, bcs), nil
	case TrBDF2:
		return NewTrBDF2Scheme(desc.Theta, desc.Mu, op, bcs), nil
	case MethodOfLines:
		return NewMethodOfLinesScheme(desc.Theta, desc.Mu, op, bcs), nil
	}
	return nil, fmt.Errorf("NewEvolver: %w: %v", ErrUnknownScheme, desc.Type)
}

const negativeTimeTolerance = 1e-8

// base holds what every scheme shares: the operator, the boundary
// conditions and the step length.
type base struct {
	op  operator.Composite
	bcs boundary.Set
	dt  float64
}

func (b *base) SetStep(dt float64) { b.dt = dt }

// setTime freezes operator and boundary conditions on [t - dt, t].
func (b *base) setTime(t float64) error {
	if t-b.dt < -negativeTimeTolerance {
		return fmt.Errorf("Step: %w: t=%g dt=%g", ErrNegativeTime, t, b.dt)
	}
	b.op.SetTime(math.Max(0, t-b.dt), t)
	b.bcs.SetTime(math.Max(0, t-b.dt))
	return nil
}

// addScaled returns y + alpha·x in a new slice.
func addScaled(y []float64, alpha float64, x []float64) []float64 {
	return floats.AddScaledTo(make([]float64, len(y)), y, alpha, x)
}

// sub returns s - t in a new slice.
func sub(s, t []float64) []float64 {
	return floats.SubTo(make([]float64, len(s)), s, t)
}

// sweep runs the implicit correction over every direction:
// y <- (1 - θ dt L_i)^{-1} (y - θ dt L_i a).
func (b *base) sweep(y, a []float64, theta float64) ([]float64, error) {
	for i := 0; i < b.op.Size(); i++ {
		rhs := addScaled(y, -theta*b.dt, b.op.ApplyDirection(i, a))
		b.bcs.ApplyBeforeSolving(b.op, rhs)
		var err error
		if y, err = b.op.SolveSplitting(i, rhs, -theta*b.dt); err != nil {
			return nil, err
		}
	}
	return y, nil
}

// explicitPredictor returns a + dt·L a with the boundary conditions applied.
func (b *base) explicitPredictor(a []float64) []float64 {
	b.bcs.ApplyBeforeApplying(b.op)
	y := addScaled(a, b.dt, b.op.Apply(a))
	b.bcs.ApplyAfterApplying(y)
	return y
}
