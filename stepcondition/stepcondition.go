// Package stepcondition holds the grid mutations applied during a rollback
// at exactly hit simulation times: early exercise, dividends and snapshots.
//
// A Composite joins several conditions with the sorted union of their
// mandatory stopping times. The rollback driver lands on every stopping time
// exactly and calls ApplyTo there as well as after every regular step; each
// condition decides by itself whether t concerns it.
package stepcondition

import (
	"errors"
	"math"
	"sort"

	"github.com/meenmo/fdm/innervalue"
)

// ErrUnsupportedExercise is returned for exercise styles no condition handles.
var ErrUnsupportedExercise = errors.New("stepcondition: exercise type is not supported")

// Condition mutates the grid a at time t.
type Condition interface {
	ApplyTo(a []float64, t float64)
}

// American enforces the early-exercise obstacle at every call.
type American struct {
	calc innervalue.Calculator
}

func NewAmerican(calc innervalue.Calculator) *American {
	return &American{calc: calc}
}

// ApplyTo sets a[i] = max(a[i], exercise value at node i).
func (c *American) ApplyTo(a []float64, t float64) {
	for i := range a {
		if v := c.calc.InnerValue(i, t); v > a[i] {
			a[i] = v
		}
	}
}

// Bermudan enforces the obstacle on its exercise times only.
type Bermudan struct {
	calc  innervalue.Calculator
	times []float64
}

// NewBermudan exercises at times (year fractions), which are sorted.
func NewBermudan(calc innervalue.Calculator, times []float64) *Bermudan {
	ts := append([]float64(nil), times...)
	sort.Float64s(ts)
	return &Bermudan{calc: calc, times: ts}
}

// ExerciseTimes returns the sorted exercise times.
func (c *Bermudan) ExerciseTimes() []float64 { return append([]float64(nil), c.times...) }

// ApplyTo exercises only when t is one of the exercise times exactly.
func (c *Bermudan) ApplyTo(a []float64, t float64) {
	i := sort.SearchFloat64s(c.times, t)
	if i == len(c.times) || c.times[i] != t {
		return
	}
	for i := range a {
		if v := c.calc.InnerValue(i, t); v > a[i] {
			a[i] = v
		}
	}
}

// Snapshot records a copy of the grid when the rollback passes its time.
type Snapshot struct {
	t      float64
	values []float64
}

func NewSnapshot(t float64) *Snapshot {
	return &Snapshot{t: t}
}

func (s *Snapshot) Time() float64 { return s.t }

// Values returns a copy of the grid captured at Time, nil before the
// rollback reached it.
func (s *Snapshot) Values() []float64 {
	if s.values == nil {
		return nil
	}
	return append([]float64(nil), s.values...)
}

// Reset forgets the captured grid.
func (s *Snapshot) Reset() { s.values = nil }

func (s *Snapshot) ApplyTo(a []float64, t float64) {
	if t == s.t {
		s.values = append(s.values[:0], a...)
	}
}

// Composite applies its conditions in order and carries their stopping times.
type Composite struct {
	times []float64
	conds []Condition
}

// NewComposite joins conds with the union of stoppingTimes.
func NewComposite(stoppingTimes [][]float64, conds []Condition) *Composite {
	var all []float64
	for _, ts := range stoppingTimes {
		for _, t := range ts {
			if !math.IsNaN(t) {
				all = append(all, t)
			}
		}
	}
	return &Composite{times: uniqueSorted(all), conds: append([]Condition(nil), conds...)}
}

func uniqueSorted(ts []float64) []float64 {
	sort.Float64s(ts)
	out := ts[:0]
	for i, t := range ts {
		if i == 0 || t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

// StoppingTimes returns the strictly increasing stopping times.
func (c *Composite) StoppingTimes() []float64 { return append([]float64(nil), c.times...) }

func (c *Composite) Conditions() []Condition { return append([]Condition(nil), c.conds...) }

func (c *Composite) ApplyTo(a []float64, t float64) {
	for _, cond := range c.conds {
		cond.ApplyTo(a, t)
	}
}

// JoinConditions puts snapshot in front of c and adds the snapshot time to
// c's stopping times. A nil c yields the snapshot alone.
func JoinConditions(snapshot *Snapshot, c *Composite) *Composite {
	if c == nil {
		return NewComposite([][]float64{{snapshot.Time()}}, []Condition{snapshot})
	}
	return NewComposite(
		[][]float64{c.StoppingTimes(), {snapshot.Time()}},
		[]Condition{snapshot, c},
	)
}
