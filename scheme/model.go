package scheme

import (
	"fmt"
	"math"
	"sort"
)

// snapTolerance is √ε: a step ending this close to the target ends on it.
var snapTolerance = math.Sqrt(2.220446049250313e-16)

// StepApplier mutates the grid at a time the rollback reaches.
type StepApplier interface {
	ApplyTo(a []float64, t float64)
}

// Model rolls a grid backward with an evolver, landing exactly on every
// stopping time.
type Model struct {
	evolver       Evolver
	stoppingTimes []float64
}

// NewModel sorts and de-duplicates stoppingTimes.
func NewModel(evolver Evolver, stoppingTimes []float64) *Model {
	ts := append([]float64(nil), stoppingTimes...)
	sort.Float64s(ts)
	out := ts[:0]
	for i, t := range ts {
		if i == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return &Model{evolver: evolver, stoppingTimes: out}
}

// Rollback evolves a from `from` to `to` in steps regular steps. A step
// crossing stopping times is broken up so the evolver ends on each of them,
// and cond is applied there. cond is also applied at the end of every
// regular step. With applyAtStart, cond is applied at from first when from is
// a stopping time.
func (m *Model) Rollback(a []float64, from, to float64, steps int, cond StepApplier, applyAtStart bool) error {
	if from < to {
		return fmt.Errorf("Rollback: %w: from %g, to %g", ErrInvalidInterval, from, to)
	}
	if steps == 0 {
		return nil
	}
	dt := (from - to) / float64(steps)
	t := from
	m.evolver.SetStep(dt)

	if applyAtStart && cond != nil {
		if i := sort.SearchFloat64s(m.stoppingTimes, from); i < len(m.stoppingTimes) && m.stoppingTimes[i] == from {
			cond.ApplyTo(a, from)
		}
	}

	for i := 0; i < steps; i, t = i+1, t-dt {
		now, next := t, t-dt
		if math.Abs(to-next) < snapTolerance {
			next = to
		}

		hit := false
		for j := len(m.stoppingTimes) - 1; j >= 0; j-- {
			s := m.stoppingTimes[j]
			if next <= s && s < now {
				hit = true
				m.evolver.SetStep(now - s)
				if err := m.evolver.Step(a, now); err != nil {
					return err
				}
				if cond != nil {
					cond.ApplyTo(a, s)
				}
				now = s
			}
		}

		if hit {
			if now > next {
				m.evolver.SetStep(now - next)
				if err := m.evolver.Step(a, now); err != nil {
					return err
				}
				if cond != nil {
					cond.ApplyTo(a, next)
				}
			}
			m.evolver.SetStep(dt)
			continue
		}

		if err := m.evolver.Step(a, now); err != nil {
			return err
		}
		if cond != nil {
			cond.ApplyTo(a, next)
		}
	}
	return nil
}
