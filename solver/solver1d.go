package solver

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/meenmo/fdm/boundary"
	"github.com/meenmo/fdm/innervalue"
	"github.com/meenmo/fdm/interpolation"
	"github.com/meenmo/fdm/lazy"
	"github.com/meenmo/fdm/mesher"
	"github.com/meenmo/fdm/operator"
	"github.com/meenmo/fdm/scheme"
	"github.com/meenmo/fdm/stepcondition"
)

// Desc bundles what a rollback needs besides the operator and the scheme.
type Desc struct {
	Mesher       mesher.Mesher
	BCs          boundary.Set
	Condition    *stepcondition.Composite
	Calculator   innervalue.Calculator
	Maturity     float64
	TimeSteps    int
	DampingSteps int
}

func (d Desc) validate() error {
	switch {
	case d.Mesher == nil:
		return fmt.Errorf("%w: missing mesher", ErrInvalidDesc)
	case d.Calculator == nil:
		return fmt.Errorf("%w: missing inner value calculator", ErrInvalidDesc)
	case d.Condition == nil:
		return fmt.Errorf("%w: missing step condition", ErrInvalidDesc)
	case !(d.Maturity > 0):
		return fmt.Errorf("%w: maturity %g", ErrInvalidDesc, d.Maturity)
	case d.TimeSteps <= 0 || d.DampingSteps < 0:
		return fmt.Errorf("%w: time steps %d, damping steps %d", ErrInvalidDesc, d.TimeSteps, d.DampingSteps)
	}
	return nil
}

// oneDay is the longest theta bump, in years.
const oneDay = 1.0 / 365

// Solver1D prices a contract on a one-dimensional mesher.
type Solver1D struct {
	desc       Desc
	schemeDesc scheme.Desc
	op         operator.Composite
	log        zerolog.Logger
	cache      *lazy.Object

	x          []float64
	values     []float64
	spline     *interpolation.MonotonicCubic
	conditions *stepcondition.Composite
	snapshot   *stepcondition.Snapshot
	snapSpline *interpolation.MonotonicCubic
}

// NewSolver1D validates desc; nothing is computed until the first query.
func NewSolver1D(desc Desc, schemeDesc scheme.Desc, op operator.Composite, opts ...Option) (*Solver1D, error) {
	if err := desc.validate(); err != nil {
		return nil, fmt.Errorf("NewSolver1D: %w", err)
	}
	if dims := desc.Mesher.Layout().Dimensions(); dims != 1 {
		return nil, fmt.Errorf("NewSolver1D: %w: %d-dimensional mesher", ErrInvalidDesc, dims)
	}
	if op == nil {
		return nil, fmt.Errorf("NewSolver1D: %w: missing operator", ErrInvalidDesc)
	}
	o := applyOptions(opts)
	return &Solver1D{
		desc:       desc,
		schemeDesc: schemeDesc,
		op:         op,
		log:        o.log.With().Str("component", "solver1d").Logger(),
		cache:      lazy.New(o.token),
	}, nil
}

// Invalidate drops the cached result.
func (s *Solver1D) Invalidate() { s.cache.Invalidate() }

func (s *Solver1D) calculate() error {
	return s.cache.Calculate(s.performCalculations)
}

func (s *Solver1D) performCalculations() error {
	maturity := s.desc.Maturity
	first := maturity
	if stops := s.desc.Condition.StoppingTimes(); len(stops) > 0 {
		first = stops[0]
	}
	s.snapshot = stepcondition.NewSnapshot(0.99 * math.Min(oneDay, first))
	s.conditions = stepcondition.JoinConditions(s.snapshot, s.desc.Condition)

	n := s.desc.Mesher.Layout().Size()
	x := make([]float64, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = s.desc.Mesher.Location(i, 0)
		values[i] = s.desc.Calculator.AvgInnerValue(i, maturity)
	}

	s.log.Debug().
		Int("nodes", n).
		Float64("maturity", maturity).
		Float64("snapshot_time", s.snapshot.Time()).
		Msg("recalculating")

	backward := NewBackward(s.op, s.desc.BCs, s.conditions, s.schemeDesc, WithLogger(s.log))
	if err := backward.Rollback(values, maturity, 0, s.desc.TimeSteps, s.desc.DampingSteps); err != nil {
		return err
	}

	spline, err := interpolation.NewMonotonicCubic(x, values)
	if err != nil {
		return err
	}
	s.snapSpline = nil
	if snap := s.snapshot.Values(); snap != nil {
		if s.snapSpline, err = interpolation.NewMonotonicCubic(x, snap); err != nil {
			return err
		}
	}
	s.x, s.values, s.spline = x, values, spline
	return nil
}

// InterpolateAt is the value at state x.
func (s *Solver1D) InterpolateAt(x float64) (float64, error) {
	if err := s.calculate(); err != nil {
		return 0, err
	}
	return s.spline.Value(x), nil
}

// DerivativeX is the first derivative in the state variable at x.
func (s *Solver1D) DerivativeX(x float64) (float64, error) {
	if err := s.calculate(); err != nil {
		return 0, err
	}
	return s.spline.Derivative(x), nil
}

// DerivativeXX is the second derivative in the state variable at x.
func (s *Solver1D) DerivativeXX(x float64) (float64, error) {
	if err := s.calculate(); err != nil {
		return 0, err
	}
	return s.spline.SecondDerivative(x), nil
}

// ThetaAt is the time decay at x per year, estimated from the grid captured
// just after the valuation date.
func (s *Solver1D) ThetaAt(x float64) (float64, error) {
	if err := s.calculate(); err != nil {
		return 0, err
	}
	if stops := s.conditions.StoppingTimes(); stops[0] <= 0 {
		return 0, fmt.Errorf("ThetaAt: %w", ErrThetaAtZero)
	}
	if s.snapSpline == nil {
		return 0, fmt.Errorf("ThetaAt: snapshot at %g was not reached", s.snapshot.Time())
	}
	return (s.snapSpline.Value(x) - s.spline.Value(x)) / s.snapshot.Time(), nil
}

// Results returns copies of the mesh locations and the rolled-back grid.
func (s *Solver1D) Results() (x, values []float64, err error) {
	if err := s.calculate(); err != nil {
		return nil, nil, err
	}
	return append([]float64(nil), s.x...), append([]float64(nil), s.values...), nil
}
