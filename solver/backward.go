package solver

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meenmo/fdm/boundary"
	"github.com/meenmo/fdm/operator"
	"github.com/meenmo/fdm/scheme"
	"github.com/meenmo/fdm/stepcondition"
)

// Backward rolls a grid backward in time with the scheme of desc, applying
// cond at every stopping time.
type Backward struct {
	op   operator.Composite
	bcs  boundary.Set
	cond *stepcondition.Composite
	desc scheme.Desc
	log  zerolog.Logger
}

// NewBackward builds the solver. cond may be nil.
func NewBackward(op operator.Composite, bcs boundary.Set, cond *stepcondition.Composite, desc scheme.Desc, opts ...Option) *Backward {
	o := applyOptions(opts)
	return &Backward{
		op:   op,
		bcs:  bcs,
		cond: cond,
		desc: desc,
		log:  o.log.With().Str("component", "backward_solver").Logger(),
	}
}

// Rollback evolves a in place from `from` back to `to`. With dampingSteps > 0
// the first part of the interval, [dampingTo, from], is covered by
// dampingSteps implicit Euler steps whatever the scheme; the scheme then
// takes steps steps down to `to`.
func (b *Backward) Rollback(a []float64, from, to float64, steps, dampingSteps int) error {
	if !(from > to) {
		return fmt.Errorf("Rollback: %w: from %g, to %g", ErrInvalidInterval, from, to)
	}
	if steps < 0 || dampingSteps < 0 || steps+dampingSteps == 0 {
		return fmt.Errorf("Rollback: %w: steps %d, damping steps %d", ErrNegativeSteps, steps, dampingSteps)
	}

	evolver, err := scheme.NewEvolver(b.desc, b.op, b.bcs)
	if err != nil {
		return fmt.Errorf("Rollback: %w", err)
	}

	var (
		stops []float64
		cond  scheme.StepApplier
	)
	if b.cond != nil {
		stops = b.cond.StoppingTimes()
		cond = b.cond
	}

	deltaT := from - to
	allSteps := steps + dampingSteps
	dampingTo := from - deltaT*float64(dampingSteps)/float64(allSteps)

	b.log.Debug().
		Str("scheme", b.desc.String()).
		Float64("from", from).
		Float64("to", to).
		Int("steps", steps).
		Int("damping_steps", dampingSteps).
		Float64("damping_to", dampingTo).
		Int("stopping_times", len(stops)).
		Msg("rollback")

	if b.desc.Type == scheme.ImplicitEuler {
		return scheme.NewModel(evolver, stops).Rollback(a, from, to, allSteps, cond, true)
	}

	if dampingSteps > 0 {
		implicit := scheme.NewImplicitEulerScheme(b.op, b.bcs)
		if err := scheme.NewModel(implicit, stops).Rollback(a, from, dampingTo, dampingSteps, cond, true); err != nil {
			return fmt.Errorf("Rollback: damping: %w", err)
		}
	}
	if steps == 0 {
		return nil
	}
	// the damping phase already applied cond at dampingTo
	return scheme.NewModel(evolver, stops).Rollback(a, dampingTo, to, steps, cond, dampingSteps == 0)
}
