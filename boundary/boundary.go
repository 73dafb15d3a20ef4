// Package boundary defines the boundary conditions the time-stepping
// schemes apply around each operator application and each linear solve.
package boundary

import (
	"fmt"

	"github.com/meenmo/fdm/mesher"
	"github.com/meenmo/fdm/operator"
)

// Condition is a boundary condition hooked into a scheme step.
type Condition interface {
	SetTime(t float64)
	ApplyBeforeApplying(op operator.Composite)
	ApplyAfterApplying(a []float64)
	ApplyBeforeSolving(op operator.Composite, rhs []float64)
	ApplyAfterSolving(a []float64)
}

// Set applies each of its conditions in order. The empty set leaves the
// natural boundaries of the operator in place.
type Set []Condition

func (s Set) SetTime(t float64) {
	for _, c := range s {
		c.SetTime(t)
	}
}

func (s Set) ApplyBeforeApplying(op operator.Composite) {
	for _, c := range s {
		c.ApplyBeforeApplying(op)
	}
}

func (s Set) ApplyAfterApplying(a []float64) {
	for _, c := range s {
		c.ApplyAfterApplying(a)
	}
}

func (s Set) ApplyBeforeSolving(op operator.Composite, rhs []float64) {
	for _, c := range s {
		c.ApplyBeforeSolving(op, rhs)
	}
}

func (s Set) ApplyAfterSolving(a []float64) {
	for _, c := range s {
		c.ApplyAfterSolving(a)
	}
}

// Side selects the grid edge a condition acts on.
type Side int

const (
	Lower Side = iota
	Upper
)

// Dirichlet pins the grid value on one edge of one direction.
type Dirichlet struct {
	value   func(t float64) float64
	current float64
	indices []int
}

// NewDirichlet fixes the value on side of direction to a constant.
func NewDirichlet(m mesher.Mesher, direction int, side Side, value float64) (*Dirichlet, error) {
	return NewTimeDependentDirichlet(m, direction, side, func(float64) float64 { return value })
}

// NewTimeDependentDirichlet fixes the value on side of direction to value(t).
func NewTimeDependentDirichlet(m mesher.Mesher, direction int, side Side, value func(t float64) float64) (*Dirichlet, error) {
	layout := m.Layout()
	if direction < 0 || direction >= layout.Dimensions() {
		return nil, fmt.Errorf("NewDirichlet: %w: direction %d", mesher.ErrDimensionMismatch, direction)
	}
	edge := 0
	if side == Upper {
		edge = layout.Dim()[direction] - 1
	}
	d := &Dirichlet{value: value, current: value(0)}
	for i := 0; i < layout.Size(); i++ {
		if layout.Coordinate(i, direction) == edge {
			d.indices = append(d.indices, i)
		}
	}
	return d, nil
}

func (d *Dirichlet) SetTime(t float64) { d.current = d.value(t) }

func (d *Dirichlet) ApplyBeforeApplying(operator.Composite) {}

func (d *Dirichlet) ApplyBeforeSolving(operator.Composite, []float64) {}

func (d *Dirichlet) ApplyAfterApplying(a []float64) { d.pin(a) }

func (d *Dirichlet) ApplyAfterSolving(a []float64) { d.pin(a) }

func (d *Dirichlet) pin(a []float64) {
	for _, i := range d.indices {
		a[i] = d.current
	}
}
