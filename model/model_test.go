package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fdm/marketdata"
	"github.com/meenmo/fdm/model"
	"github.com/meenmo/fdm/termstructure"
)

func TestBlackScholesProcessVersionTracksQuotes(t *testing.T) {
	t.Parallel()

	spot := marketdata.NewSimpleQuote(100)
	vol := marketdata.NewSimpleQuote(0.2)
	r := termstructure.NewFlatForwardRate(0.05)
	q := termstructure.NewFlatForwardRate(0.02)

	p, err := model.NewBlackScholesProcess(spot, vol, r, q)
	require.NoError(t, err)

	v0 := p.Version()
	assert.InDelta(t, 100*math.Exp(0.03), p.Forward(1), 1e-12)
	assert.InDelta(t, math.Log(100), p.X0(), 1e-15)

	spot.SetValue(101)
	assert.NotEqual(t, v0, p.Version())

	_, err = model.NewBlackScholesProcess(spot, nil, r, q)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestHullWhiteFitsInitialCurve(t *testing.T) {
	t.Parallel()

	curve := termstructure.NewFlatForwardRate(0.03)
	hw, err := model.NewHullWhite(curve, 0.1, 0.01)
	require.NoError(t, err)

	// at t = 0 with x = 0 the model reprices the curve
	assert.InDelta(t, curve.Discount(5), hw.DiscountBond(0, 5, 0), 1e-14)
	assert.Equal(t, 1.0, hw.DiscountBond(2, 2, 0.01))

	// φ(0) is the short forward
	assert.InDelta(t, 0.03, hw.Phi(0), 1e-6)
	e := 1 - math.Exp(-0.1)
	assert.InDelta(t, 0.03+0.0001/(2*0.01)*e*e, hw.Phi(1), 1e-6)

	assert.InDelta(t, (1-math.Exp(-0.4))/0.1, hw.B(1, 5), 1e-14)

	_, err = model.NewHullWhite(curve, 0, 0.01)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}
