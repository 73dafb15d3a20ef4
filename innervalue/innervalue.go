// Package innervalue supplies payoff values on mesh nodes: the exercise
// value at a node and time, and the cell-averaged value used to seed the
// grid at maturity.
package innervalue

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/meenmo/fdm/instruments/options"
	"github.com/meenmo/fdm/mesher"
	"github.com/meenmo/fdm/model"
)

// Calculator evaluates a payoff on mesh nodes.
type Calculator interface {
	// InnerValue is the exercise value at node index and time t.
	InnerValue(index int, t float64) float64
	// AvgInnerValue is the payoff averaged over the cell around node index.
	AvgInnerValue(index int, t float64) float64
}

const quadraturePoints = 16

// cellAverage averages f over [lo, hi], splitting the integral at a kink
// inside the cell.
func cellAverage(f func(float64) float64, lo, hi, kink float64) float64 {
	if !(hi > lo) {
		return f(lo)
	}
	if kink > lo && kink < hi {
		left := quad.Fixed(f, lo, kink, quadraturePoints, quad.Legendre{}, 0)
		right := quad.Fixed(f, kink, hi, quadraturePoints, quad.Legendre{}, 0)
		return (left + right) / (hi - lo)
	}
	return quad.Fixed(f, lo, hi, quadraturePoints, quad.Legendre{}, 0) / (hi - lo)
}

// cell returns the half-way points to the neighbours of node index; edge
// nodes get a one-sided cell.
func cell(m mesher.Mesher, index, direction int) (lo, hi float64) {
	x := m.Location(index, direction)
	lo, hi = x, x
	if h := m.Dminus(index, direction); !math.IsNaN(h) {
		lo = x - 0.5*h
	}
	if h := m.Dplus(index, direction); !math.IsNaN(h) {
		hi = x + 0.5*h
	}
	return lo, hi
}

// Log evaluates a payoff on the spot S = e^x of a log-spot mesher.
// Cell averages are cached since neither payoff nor mesher changes.
// Not safe for concurrent use.
type Log struct {
	payoff    options.Payoff
	mesher    mesher.Mesher
	direction int
	avg       map[int]float64
}

// NewLog builds the calculator of payoff along direction of m.
func NewLog(payoff options.Payoff, m mesher.Mesher, direction int) *Log {
	return &Log{payoff: payoff, mesher: m, direction: direction, avg: make(map[int]float64)}
}

func (c *Log) InnerValue(index int, _ float64) float64 {
	return c.payoff.Value(math.Exp(c.mesher.Location(index, c.direction)))
}

func (c *Log) AvgInnerValue(index int, _ float64) float64 {
	if v, ok := c.avg[index]; ok {
		return v
	}
	kink := math.NaN()
	if k, ok := c.payoff.(options.Kinked); ok && k.Kink() > 0 {
		kink = math.Log(k.Kink())
	}
	lo, hi := cell(c.mesher, index, c.direction)
	v := cellAverage(func(x float64) float64 { return c.payoff.Value(math.Exp(x)) }, lo, hi, kink)
	c.avg[index] = v
	return v
}

// ZeroBond evaluates an option on a zero-coupon bond maturing at
// BondMaturity, with the bond priced off the Hull-White state on the mesher.
type ZeroBond struct {
	model        *model.HullWhite
	bondMaturity float64
	payoff       options.PlainVanilla
	mesher       mesher.Mesher
	direction    int
}

// NewZeroBond builds the calculator of payoff on the bond maturing at
// bondMaturity (year fraction).
func NewZeroBond(hw *model.HullWhite, bondMaturity float64, payoff options.PlainVanilla, m mesher.Mesher, direction int) *ZeroBond {
	return &ZeroBond{model: hw, bondMaturity: bondMaturity, payoff: payoff, mesher: m, direction: direction}
}

func (c *ZeroBond) value(x, t float64) float64 {
	return c.payoff.Value(c.model.DiscountBond(t, c.bondMaturity, x))
}

func (c *ZeroBond) InnerValue(index int, t float64) float64 {
	return c.value(c.mesher.Location(index, c.direction), t)
}

// AvgInnerValue averages over the cell, splitting at the state where the
// bond price equals the strike.
func (c *ZeroBond) AvgInnerValue(index int, t float64) float64 {
	kink := math.NaN()
	if b := c.model.B(t, c.bondMaturity); b > 0 && c.payoff.Strike > 0 {
		// P(t,S,x) = A e^{-Bx} = K  =>  x = ln(A/K) / B
		a := c.model.DiscountBond(t, c.bondMaturity, 0)
		kink = math.Log(a/c.payoff.Strike) / b
	}
	lo, hi := cell(c.mesher, index, c.direction)
	return cellAverage(func(x float64) float64 { return c.value(x, t) }, lo, hi, kink)
}
