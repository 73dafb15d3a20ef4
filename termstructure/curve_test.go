package termstructure_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fdm/marketdata"
	"github.com/meenmo/fdm/termstructure"
)

func TestFlatForwardRates(t *testing.T) {
	t.Parallel()

	q := marketdata.NewSimpleQuote(0.03)
	c := termstructure.NewFlatForward(q)

	assert.InDelta(t, math.Exp(-0.06), c.Discount(2), 1e-15)
	assert.InDelta(t, 0.03, termstructure.ZeroRate(c, 2), 1e-14)
	assert.InDelta(t, 0.03, termstructure.ForwardRate(c, 1, 3), 1e-14)
	assert.InDelta(t, 0.03, termstructure.InstantaneousForward(c, 0), 1e-7)
	assert.InDelta(t, 0.03, termstructure.InstantaneousForward(c, 1.5), 1e-7)

	v := c.Version()
	q.SetValue(0.04)
	assert.NotEqual(t, v, c.Version())
	assert.InDelta(t, 0.04, c.Rate(), 0)
}

func TestInterpolatedDiscountLogLinear(t *testing.T) {
	t.Parallel()

	c, err := termstructure.NewInterpolatedDiscount(
		[]float64{2, 1},
		[]float64{math.Exp(-0.02 - 0.03), math.Exp(-0.02)},
	)
	require.NoError(t, err)

	// node at zero is implied
	assert.InDelta(t, 1.0, c.Discount(0), 1e-15)
	assert.InDelta(t, math.Exp(-0.01), c.Discount(0.5), 1e-15)
	// second segment carries a 3% forward
	assert.InDelta(t, 0.03, termstructure.ForwardRate(c, 1.25, 1.75), 1e-12)
	// extrapolation keeps the last forward
	assert.InDelta(t, 0.03, termstructure.ForwardRate(c, 3, 4), 1e-12)
	assert.InDelta(t, 0.03, termstructure.InstantaneousForward(c, 1.5), 1e-7)
}

func TestInterpolatedDiscountRejectsBadNodes(t *testing.T) {
	t.Parallel()

	_, err := termstructure.NewInterpolatedDiscount([]float64{1}, []float64{0.9, 0.8})
	assert.ErrorIs(t, err, termstructure.ErrInvalidCurve)

	_, err = termstructure.NewInterpolatedDiscount([]float64{1, 1}, []float64{0.9, 0.8})
	assert.ErrorIs(t, err, termstructure.ErrInvalidCurve)

	_, err = termstructure.NewInterpolatedDiscount([]float64{1}, []float64{-0.9})
	assert.ErrorIs(t, err, termstructure.ErrInvalidCurve)
}
