package scheme

import (
	"github.com/meenmo/fdm/boundary"
	"github.com/meenmo/fdm/operator"
)

// DouglasScheme is the Douglas ADI scheme. With one direction and
// θ = 1/2 it is Crank-Nicolson.
type DouglasScheme struct {
	base
	theta float64
}

func NewDouglasScheme(theta float64, op operator.Composite, bcs boundary.Set) *DouglasScheme {
	return &DouglasScheme{base: base{op: op, bcs: bcs}, theta: theta}
}

func (s *DouglasScheme) Step(a []float64, t float64) error {
	if err := s.setTime(t); err != nil {
		return err
	}
	y := s.explicitPredictor(a)
	y, err := s.sweep(y, a, s.theta)
	if err != nil {
		return err
	}
	s.bcs.ApplyAfterSolving(y)
	copy(a, y)
	return nil
}

// CraigSneydScheme adds a mixed-derivative corrector stage to Douglas.
type CraigSneydScheme struct {
	base
	theta, mu float64
}

func NewCraigSneydScheme(theta, mu float64, op operator.Composite, bcs boundary.Set) *CraigSneydScheme {
	return &CraigSneydScheme{base: base{op: op, bcs: bcs}, theta: theta, mu: mu}
}

func (s *CraigSneydScheme) Step(a []float64, t float64) error {
	if err := s.setTime(t); err != nil {
		return err
	}
	y0 := s.explicitPredictor(a)
	y, err := s.sweep(y0, a, s.theta)
	if err != nil {
		return err
	}
	yt := addScaled(y0, s.mu*s.dt, s.op.ApplyMixed(sub(y, a)))
	if yt, err = s.sweep(yt, a, s.theta); err != nil {
		return err
	}
	s.bcs.ApplyAfterSolving(yt)
	copy(a, yt)
	return nil
}

// ModifiedCraigSneydScheme corrects with the full operator on top of the
// mixed terms.
type ModifiedCraigSneydScheme struct {
	base
	theta, mu float64
}

func NewModifiedCraigSneydScheme(theta, mu float64, op operator.Composite, bcs boundary.Set) *ModifiedCraigSneydScheme {
	return &ModifiedCraigSneydScheme{base: base{op: op, bcs: bcs}, theta: theta, mu: mu}
}

func (s *ModifiedCraigSneydScheme) Step(a []float64, t float64) error {
	if err := s.setTime(t); err != nil {
		return err
	}
	y0 := s.explicitPredictor(a)
	y, err := s.sweep(y0, a, s.theta)
	if err != nil {
		return err
	}
	diff := sub(y, a)
	yt := addScaled(y0, s.mu*s.dt, s.op.ApplyMixed(diff))
	yt = addScaled(yt, (0.5-s.mu)*s.dt, s.op.Apply(diff))
	if yt, err = s.sweep(yt, a, s.theta); err != nil {
		return err
	}
	s.bcs.ApplyAfterSolving(yt)
	copy(a, yt)
	return nil
}

// HundsdorferScheme is the Hundsdorfer-Verwer ADI scheme.
type HundsdorferScheme struct {
	base
	theta, mu float64
}

func NewHundsdorferScheme(theta, mu float64, op operator.Composite, bcs boundary.Set) *HundsdorferScheme {
	return &HundsdorferScheme{base: base{op: op, bcs: bcs}, theta: theta, mu: mu}
}

func (s *HundsdorferScheme) Step(a []float64, t float64) error {
	if err := s.setTime(t); err != nil {
		return err
	}
	y0 := s.explicitPredictor(a)
	y, err := s.sweep(y0, a, s.theta)
	if err != nil {
		return err
	}
	s.bcs.ApplyAfterSolving(y)

	yt := addScaled(y0, s.mu*s.dt, s.op.Apply(sub(y, a)))
	s.bcs.ApplyAfterApplying(yt)
	// the second sweep is explicit in the first-stage result
	if yt, err = s.sweep(yt, y, s.theta); err != nil {
		return err
	}
	s.bcs.ApplyAfterSolving(yt)
	copy(a, yt)
	return nil
}
