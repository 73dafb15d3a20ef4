package operator

import (
	"fmt"

	"github.com/meenmo/fdm/mesher"
	"github.com/meenmo/fdm/model"
	"github.com/meenmo/fdm/termstructure"
)

// singleDirection implements the Composite plumbing shared by operators
// that act along one axis only.
type singleDirection struct {
	mapT *TripleBand
}

func (s *singleDirection) Size() int { return 1 }

func (s *singleDirection) Apply(r []float64) []float64 { return s.mapT.Apply(r) }

func (s *singleDirection) ApplyMixed(r []float64) []float64 { return make([]float64, len(r)) }

func (s *singleDirection) ApplyDirection(direction int, r []float64) []float64 {
	if direction == s.mapT.direction {
		return s.mapT.Apply(r)
	}
	return make([]float64, len(r))
}

func (s *singleDirection) SolveSplitting(direction int, r []float64, a float64) ([]float64, error) {
	if direction == s.mapT.direction {
		return s.mapT.SolveSplitting(r, a, 1)
	}
	return append([]float64(nil), r...), nil
}

func (s *singleDirection) Preconditioner(r []float64, a float64) ([]float64, error) {
	return s.SolveSplitting(s.mapT.direction, r, a)
}

// BlackScholes is the Black-Scholes generator in log-spot x = ln S,
//
//	L = (r - q - σ²/2) ∂x + σ²/2 ∂xx - r,
//
// with r and q the forward rates over the current time interval.
type BlackScholes struct {
	singleDirection
	process *model.BlackScholesProcess
	dx      *TripleBand
	dxx     *TripleBand
}

// NewBlackScholes builds the operator along direction of m.
func NewBlackScholes(m mesher.Mesher, process *model.BlackScholesProcess, direction int) (*BlackScholes, error) {
	dx, err := NewFirstDerivative(m, direction)
	if err != nil {
		return nil, fmt.Errorf("NewBlackScholes: %w", err)
	}
	dxx, err := NewSecondDerivative(m, direction)
	if err != nil {
		return nil, fmt.Errorf("NewBlackScholes: %w", err)
	}
	op := &BlackScholes{process: process, dx: dx, dxx: dxx}
	op.SetTime(0, 0)
	return op, nil
}

func (op *BlackScholes) SetTime(t1, t2 float64) {
	r := termstructure.ForwardRate(op.process.RiskFree(), t1, t2)
	q := termstructure.ForwardRate(op.process.Dividend(), t1, t2)
	v := op.process.Vol() * op.process.Vol()
	op.mapT = op.dx.Scale(r - q - 0.5*v).Add(op.dxx.Scale(0.5 * v)).AddScalar(-r)
}

// HullWhite is the generator of a claim on the Hull-White state x,
//
//	L = -a x ∂x + σ²/2 ∂xx - (x + φ̄),
//
// with φ̄ the average of φ over the current time interval.
type HullWhite struct {
	singleDirection
	model *model.HullWhite
	x     []float64
	drift *TripleBand
	dxx   *TripleBand
}

// NewHullWhite builds the operator along direction of m.
func NewHullWhite(m mesher.Mesher, hw *model.HullWhite, direction int) (*HullWhite, error) {
	dx, err := NewFirstDerivative(m, direction)
	if err != nil {
		return nil, fmt.Errorf("NewHullWhite: %w", err)
	}
	dxx, err := NewSecondDerivative(m, direction)
	if err != nil {
		return nil, fmt.Errorf("NewHullWhite: %w", err)
	}
	x := m.Locations(direction)
	negAx := make([]float64, len(x))
	for i, xi := range x {
		negAx[i] = -hw.Speed() * xi
	}
	op := &HullWhite{
		model: hw,
		x:     x,
		drift: dx.MultRows(negAx),
		dxx:   dxx.Scale(0.5 * hw.Vol() * hw.Vol()),
	}
	op.SetTime(0, 0)
	return op, nil
}

func (op *HullWhite) SetTime(t1, t2 float64) {
	phi := 0.5 * (op.model.Phi(t1) + op.model.Phi(t2))
	rate := make([]float64, len(op.x))
	for i, xi := range op.x {
		rate[i] = -(xi + phi)
	}
	op.mapT = op.drift.Add(op.dxx).AddToDiag(rate)
}
