// Package operator assembles the spatial differential operators of the
// finite-difference models as tridiagonal bands over a mesher layout.
//
// An operator L is split by direction, L = Σ L_i + mixed terms, so the ADI
// schemes can treat each direction implicitly in turn. The operators here
// are one-directional: Size() is 1 and ApplyMixed is identically zero.
package operator

import (
	"errors"
)

var (
	// ErrSingular is returned when a splitting system cannot be solved.
	ErrSingular = errors.New("operator: singular system")
	// ErrDimensionMismatch is returned when a direction or vector does not
	// match the layout.
	ErrDimensionMismatch = errors.New("operator: dimension mismatch")
)

// Composite is a linear operator split by direction.
type Composite interface {
	// Size is the number of directions.
	Size() int
	// SetTime freezes time-dependent coefficients over [t1, t2].
	SetTime(t1, t2 float64)
	// Apply returns L r.
	Apply(r []float64) []float64
	// ApplyMixed returns the cross-derivative part of L r.
	ApplyMixed(r []float64) []float64
	// ApplyDirection returns L_direction r.
	ApplyDirection(direction int, r []float64) []float64
	// SolveSplitting solves (1 + a·L_direction) x = r.
	SolveSplitting(direction int, r []float64, a float64) ([]float64, error)
	// Preconditioner approximately solves (1 + a·L) x = r.
	Preconditioner(r []float64, a float64) ([]float64, error)
}
