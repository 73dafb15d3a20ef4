package solver

import (
	"fmt"
	"math"

	"github.com/meenmo/fdm/model"
	"github.com/meenmo/fdm/operator"
	"github.com/meenmo/fdm/scheme"
)

// BlackScholes prices on a log-spot mesher under a Black-Scholes process.
// Queries take the spot, not its logarithm. Results are recomputed when any
// market input of the process changes.
type BlackScholes struct {
	process *model.BlackScholesProcess
	solver  *Solver1D
}

// NewBlackScholes assembles the Black-Scholes operator on desc.Mesher.
func NewBlackScholes(process *model.BlackScholesProcess, desc Desc, schemeDesc scheme.Desc, opts ...Option) (*BlackScholes, error) {
	if process == nil {
		return nil, fmt.Errorf("NewBlackScholes: %w: missing process", ErrInvalidDesc)
	}
	if err := desc.validate(); err != nil {
		return nil, fmt.Errorf("NewBlackScholes: %w", err)
	}
	op, err := operator.NewBlackScholes(desc.Mesher, process, 0)
	if err != nil {
		return nil, fmt.Errorf("NewBlackScholes: %w", err)
	}
	opts = append([]Option{WithTokenSource(process.Version)}, opts...)
	s, err := NewSolver1D(desc, schemeDesc, op, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewBlackScholes: %w", err)
	}
	return &BlackScholes{process: process, solver: s}, nil
}

func (s *BlackScholes) ValueAt(spot float64) (float64, error) {
	return s.solver.InterpolateAt(math.Log(spot))
}

// DeltaAt is ∂V/∂S = V_x / S.
func (s *BlackScholes) DeltaAt(spot float64) (float64, error) {
	vx, err := s.solver.DerivativeX(math.Log(spot))
	if err != nil {
		return 0, err
	}
	return vx / spot, nil
}

// GammaAt is ∂²V/∂S² = (V_xx - V_x) / S².
func (s *BlackScholes) GammaAt(spot float64) (float64, error) {
	x := math.Log(spot)
	vx, err := s.solver.DerivativeX(x)
	if err != nil {
		return 0, err
	}
	vxx, err := s.solver.DerivativeXX(x)
	if err != nil {
		return 0, err
	}
	return (vxx - vx) / (spot * spot), nil
}

func (s *BlackScholes) ThetaAt(spot float64) (float64, error) {
	return s.solver.ThetaAt(math.Log(spot))
}

// Invalidate forces a recomputation on the next query.
func (s *BlackScholes) Invalidate() { s.solver.Invalidate() }

// HullWhite prices claims on the Hull-White state x on an OU mesher.
type HullWhite struct {
	model  *model.HullWhite
	solver *Solver1D
}

// NewHullWhite assembles the Hull-White operator on desc.Mesher.
func NewHullWhite(hw *model.HullWhite, desc Desc, schemeDesc scheme.Desc, opts ...Option) (*HullWhite, error) {
	if hw == nil {
		return nil, fmt.Errorf("NewHullWhite: %w: missing model", ErrInvalidDesc)
	}
	if err := desc.validate(); err != nil {
		return nil, fmt.Errorf("NewHullWhite: %w", err)
	}
	op, err := operator.NewHullWhite(desc.Mesher, hw, 0)
	if err != nil {
		return nil, fmt.Errorf("NewHullWhite: %w", err)
	}
	opts = append([]Option{WithTokenSource(hw.Version)}, opts...)
	s, err := NewSolver1D(desc, schemeDesc, op, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewHullWhite: %w", err)
	}
	return &HullWhite{model: hw, solver: s}, nil
}

// ValueAt is the value at state x; x = 0 is today's short rate.
func (s *HullWhite) ValueAt(x float64) (float64, error) {
	return s.solver.InterpolateAt(x)
}

func (s *HullWhite) Invalidate() { s.solver.Invalidate() }
