// Package termstructure provides the yield curves consumed by the
// finite-difference operators. Time is measured in year fractions from the
// valuation date; rates are continuously compounded.
package termstructure

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/meenmo/fdm/marketdata"
)

var (
	// ErrInvalidCurve is returned when curve nodes are unusable.
	ErrInvalidCurve = errors.New("termstructure: invalid curve nodes")
)

// YieldCurve provides discount factors on the model time axis.
type YieldCurve interface {
	marketdata.Observable
	Discount(t float64) float64
}

// ZeroRate returns the continuously compounded zero rate to t.
func ZeroRate(c YieldCurve, t float64) float64 {
	if t <= 0 {
		return InstantaneousForward(c, 0)
	}
	return -math.Log(c.Discount(t)) / t
}

// ForwardRate returns the continuously compounded forward rate over [t1, t2].
// A degenerate interval yields the instantaneous forward at t1.
func ForwardRate(c YieldCurve, t1, t2 float64) float64 {
	if t2 < t1 {
		t1, t2 = t2, t1
	}
	if t2-t1 < 1e-10 {
		return InstantaneousForward(c, t1)
	}
	return math.Log(c.Discount(t1)/c.Discount(t2)) / (t2 - t1)
}

const forwardStep = 1e-4

// InstantaneousForward returns f(0, t) = -d ln P(0, t) / dt.
func InstantaneousForward(c YieldCurve, t float64) float64 {
	logDF := func(x float64) float64 { return math.Log(c.Discount(x)) }
	settings := &fd.Settings{Formula: fd.Central, Step: forwardStep}
	if t < forwardStep {
		settings.Formula = fd.Forward
	}
	return -fd.Derivative(logDF, t, settings)
}

// FlatForward is a curve with a single continuously compounded rate.
type FlatForward struct {
	rate marketdata.Quote
}

// NewFlatForward builds a flat curve driven by rate, which may be moved later.
func NewFlatForward(rate marketdata.Quote) *FlatForward {
	return &FlatForward{rate: rate}
}

// NewFlatForwardRate builds a flat curve from a fixed rate.
func NewFlatForwardRate(rate float64) *FlatForward {
	return &FlatForward{rate: marketdata.NewSimpleQuote(rate)}
}

func (f *FlatForward) Discount(t float64) float64 { return math.Exp(-f.rate.Value() * t) }
func (f *FlatForward) Version() uint64            { return f.rate.Version() }

// Rate returns the current flat rate.
func (f *FlatForward) Rate() float64 { return f.rate.Value() }

// InterpolatedDiscount interpolates discount factors log-linearly between
// nodes (piecewise flat forwards) and extrapolates with the nearest segment's
// forward rate.
type InterpolatedDiscount struct {
	times []float64
	dfs   []float64
}

// NewInterpolatedDiscount builds a curve from (time, discount) nodes. A node
// at t = 0 with DF = 1 is added when missing.
func NewInterpolatedDiscount(times, dfs []float64) (*InterpolatedDiscount, error) {
	if len(times) != len(dfs) || len(times) == 0 {
		return nil, fmt.Errorf("NewInterpolatedDiscount: %w: %d times, %d discount factors", ErrInvalidCurve, len(times), len(dfs))
	}
	idx := make([]int, len(times))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return times[idx[a]] < times[idx[b]] })

	c := &InterpolatedDiscount{}
	if times[idx[0]] > 0 {
		c.times = append(c.times, 0)
		c.dfs = append(c.dfs, 1)
	}
	for _, i := range idx {
		if times[i] < 0 || dfs[i] <= 0 {
			return nil, fmt.Errorf("NewInterpolatedDiscount: %w: node (%g, %g)", ErrInvalidCurve, times[i], dfs[i])
		}
		if n := len(c.times); n > 0 && times[i] == c.times[n-1] {
			return nil, fmt.Errorf("NewInterpolatedDiscount: %w: duplicate time %g", ErrInvalidCurve, times[i])
		}
		c.times = append(c.times, times[i])
		c.dfs = append(c.dfs, dfs[i])
	}
	if len(c.times) < 2 {
		return nil, fmt.Errorf("NewInterpolatedDiscount: %w: need a node beyond t=0", ErrInvalidCurve)
	}
	return c, nil
}

func (c *InterpolatedDiscount) Version() uint64 { return 0 }

func (c *InterpolatedDiscount) Discount(t float64) float64 {
	i1, i2 := c.bracket(t)
	t1, t2 := c.times[i1], c.times[i2]
	df1, df2 := c.dfs[i1], c.dfs[i2]
	forward := math.Log(df1/df2) / (t2 - t1)
	return df1 * math.Exp(-forward*(t-t1))
}

// bracket returns the node pair around t, or the boundary pair outside the range.
func (c *InterpolatedDiscount) bracket(t float64) (int, int) {
	i := sort.SearchFloat64s(c.times, t)
	if i <= 0 {
		return 0, 1
	}
	if i >= len(c.times) {
		return len(c.times) - 2, len(c.times) - 1
	}
	return i - 1, i
}
