package engine_test

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fdm/analytic"
	"github.com/meenmo/fdm/config"
	"github.com/meenmo/fdm/engine"
	"github.com/meenmo/fdm/instruments/options"
	"github.com/meenmo/fdm/marketdata"
	"github.com/meenmo/fdm/model"
	"github.com/meenmo/fdm/termstructure"
)

var (
	refDate = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	// 365 days later, one year under ACT/365F
	expiry = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
)

func testConfig() config.Config {
	c := config.DefaultConfig
	c.XGrid = 201
	c.TimeSteps = 200
	c.DampingSteps = 2
	return c
}

type market struct {
	spot, vol, rate *marketdata.SimpleQuote
	process         *model.BlackScholesProcess
}

func newMarket(t *testing.T, spot, vol, rate float64) market {
	t.Helper()
	m := market{
		spot: marketdata.NewSimpleQuote(spot),
		vol:  marketdata.NewSimpleQuote(vol),
		rate: marketdata.NewSimpleQuote(rate),
	}
	var err error
	m.process, err = model.NewBlackScholesProcess(m.spot, m.vol,
		termstructure.NewFlatForward(m.rate), termstructure.NewFlatForwardRate(0))
	require.NoError(t, err)
	return m
}

func price(t *testing.T, m market, opt engine.VanillaOption, opts ...engine.Option) engine.Results {
	t.Helper()
	opts = append([]engine.Option{engine.WithConfig(testConfig())}, opts...)
	e, err := engine.NewFdBlackScholesVanilla(opt, m.process, refDate, opts...)
	require.NoError(t, err)
	r, err := e.Results()
	require.NoError(t, err)
	return r
}

func TestEuropeanMatchesClosedForm(t *testing.T) {
	t.Parallel()

	for _, typ := range []options.OptionType{options.Call, options.Put} {
		m := newMarket(t, 100, 0.2, 0.05)
		r := price(t, m, engine.VanillaOption{
			Payoff:   options.PlainVanilla{Type: typ, Strike: 100},
			Exercise: options.NewEuropeanExercise(expiry),
		})
		want, err := analytic.BlackScholes(typ, 100, 100, 1, 0.05, 0, 0.2)
		require.NoError(t, err)

		assert.InEpsilon(t, want.Price, r.NPV, 2e-3, typ.String())
		assert.InDelta(t, want.Delta, r.Delta, 5e-3, typ.String())
		assert.InEpsilon(t, want.Gamma, r.Gamma, 2e-2, typ.String())
		assert.InEpsilon(t, want.Theta, r.Theta, 3e-2, typ.String())
	}
}

func TestAmericanPut(t *testing.T) {
	t.Parallel()

	m := newMarket(t, 36, 0.2, 0.06)
	payoff := options.PlainVanilla{Type: options.Put, Strike: 40}

	american := price(t, m, engine.VanillaOption{Payoff: payoff, Exercise: options.NewAmericanExercise(refDate, expiry)})
	european := price(t, m, engine.VanillaOption{Payoff: payoff, Exercise: options.NewEuropeanExercise(expiry)})

	assert.InDelta(t, 4.4867, american.NPV, 0.02)
	assert.Greater(t, american.NPV, european.NPV)
	// deep enough in the money to sit near the exercise boundary
	assert.Less(t, american.Delta, 0.0)
	assert.GreaterOrEqual(t, american.Delta, -1.0)
}

func TestBermudanBetweenEuropeanAndAmerican(t *testing.T) {
	t.Parallel()

	m := newMarket(t, 100, 0.25, 0.05)
	payoff := options.PlainVanilla{Type: options.Put, Strike: 105}
	dates := []time.Time{
		time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC),
		expiry,
	}
	ex, err := options.NewBermudanExercise(dates)
	require.NoError(t, err)

	european := price(t, m, engine.VanillaOption{Payoff: payoff, Exercise: options.NewEuropeanExercise(expiry)})
	bermudan := price(t, m, engine.VanillaOption{Payoff: payoff, Exercise: ex})
	american := price(t, m, engine.VanillaOption{Payoff: payoff, Exercise: options.NewAmericanExercise(refDate, expiry)})

	assert.Greater(t, bermudan.NPV, european.NPV)
	assert.LessOrEqual(t, bermudan.NPV, american.NPV+1e-9)
	assert.False(t, math.IsNaN(bermudan.Theta))
}

func TestBermudanExerciseTodayHasNoTheta(t *testing.T) {
	t.Parallel()

	m := newMarket(t, 100, 0.25, 0.05)
	ex, err := options.NewBermudanExercise([]time.Time{refDate, expiry})
	require.NoError(t, err)

	r := price(t, m, engine.VanillaOption{
		Payoff:   options.PlainVanilla{Type: options.Put, Strike: 110},
		Exercise: ex,
	})
	assert.True(t, math.IsNaN(r.Theta))
	// exercisable now, so worth at least the intrinsic value
	assert.GreaterOrEqual(t, r.NPV, 10.0-1e-6)
}

func TestCashDividendLowersCall(t *testing.T) {
	t.Parallel()

	m := newMarket(t, 100, 0.2, 0.05)
	payDate := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	payoff := options.PlainVanilla{Type: options.Call, Strike: 100}

	plain := price(t, m, engine.VanillaOption{Payoff: payoff, Exercise: options.NewEuropeanExercise(expiry)})
	withDiv := price(t, m, engine.VanillaOption{
		Payoff:    payoff,
		Exercise:  options.NewEuropeanExercise(expiry),
		Dividends: marketdata.DividendSchedule{{Date: payDate, Amount: 3}},
	})
	assert.Less(t, withDiv.NPV, plain.NPV)

	// escrowed-dividend approximation
	tDiv := 181.0 / 365
	escrowed, err := analytic.BlackScholes(options.Call, 100-3*math.Exp(-0.05*tDiv), 100, 1, 0.05, 0, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, escrowed.Price, withDiv.NPV, 0.3)

	// dividends outside the option's life are ignored
	late := price(t, m, engine.VanillaOption{
		Payoff:    payoff,
		Exercise:  options.NewEuropeanExercise(expiry),
		Dividends: marketdata.DividendSchedule{{Date: expiry.AddDate(0, 1, 0), Amount: 3}, {Date: refDate, Amount: 3}},
	})
	assert.InDelta(t, plain.NPV, late.NPV, 1e-12)
}

func TestLazyRecalculationOnQuoteChange(t *testing.T) {
	t.Parallel()

	m := newMarket(t, 100, 0.2, 0.05)
	var buf bytes.Buffer
	e, err := engine.NewFdBlackScholesVanilla(engine.VanillaOption{
		Payoff:   options.PlainVanilla{Type: options.Call, Strike: 100},
		Exercise: options.NewEuropeanExercise(expiry),
	}, m.process, refDate, engine.WithConfig(testConfig()), engine.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	require.NoError(t, err)

	priced := func() int { return strings.Count(buf.String(), `"message":"priced"`) }

	r1, err := e.Results()
	require.NoError(t, err)
	_, err = e.Results()
	require.NoError(t, err)
	assert.Equal(t, 1, priced())

	m.rate.SetValue(0.05)
	_, err = e.Results()
	require.NoError(t, err)
	assert.Equal(t, 1, priced())

	m.spot.SetValue(105)
	r2, err := e.Results()
	require.NoError(t, err)
	assert.Equal(t, 2, priced())
	assert.Greater(t, r2.NPV, r1.NPV)

	m.rate.SetValue(0.01)
	r3, err := e.Results()
	require.NoError(t, err)
	assert.Equal(t, 3, priced())
	assert.Less(t, r3.NPV, r2.NPV)

	e.Invalidate()
	_, err = e.Results()
	require.NoError(t, err)
	assert.Equal(t, 4, priced())
}

func TestEveryConfiguredSchemePrices(t *testing.T) {
	t.Parallel()

	want, err := analytic.BlackScholes(options.Put, 100, 100, 1, 0.05, 0, 0.2)
	require.NoError(t, err)

	for _, name := range []string{"douglas", "crank-nicolson", "craig-sneyd", "modified-craig-sneyd", "hundsdorfer", "modified-hundsdorfer", "implicit-euler", "tr-bdf2"} {
		c := testConfig()
		c.Scheme = name
		m := newMarket(t, 100, 0.2, 0.05)
		r := price(t, m, engine.VanillaOption{
			Payoff:   options.PlainVanilla{Type: options.Put, Strike: 100},
			Exercise: options.NewEuropeanExercise(expiry),
		}, engine.WithConfig(c))
		assert.InDelta(t, want.Price, r.NPV, 2e-2, name)
	}
}

func TestVanillaRejects(t *testing.T) {
	t.Parallel()

	m := newMarket(t, 100, 0.2, 0.05)
	good := engine.VanillaOption{
		Payoff:   options.PlainVanilla{Type: options.Call, Strike: 100},
		Exercise: options.NewEuropeanExercise(expiry),
	}

	_, err := engine.NewFdBlackScholesVanilla(good, nil, refDate)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)

	bad := good
	bad.Payoff.Strike = 0
	_, err = engine.NewFdBlackScholesVanilla(bad, m.process, refDate)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)

	bad = good
	bad.Exercise = options.Exercise{Type: options.European}
	_, err = engine.NewFdBlackScholesVanilla(bad, m.process, refDate)
	assert.ErrorIs(t, err, options.ErrNoExerciseDates)

	c := testConfig()
	c.TimeSteps = 0
	_, err = engine.NewFdBlackScholesVanilla(good, m.process, refDate, engine.WithConfig(c))
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	e, err := engine.NewFdBlackScholesVanilla(good, m.process, expiry, engine.WithConfig(testConfig()))
	require.NoError(t, err)
	_, err = e.Results()
	assert.ErrorIs(t, err, engine.ErrExpired)
}

func newHullWhite(t *testing.T, rate *marketdata.SimpleQuote) *model.HullWhite {
	t.Helper()
	hw, err := model.NewHullWhite(termstructure.NewFlatForward(rate), 0.1, 0.01)
	require.NoError(t, err)
	return hw
}

func TestZeroBondOptionMatchesJamshidian(t *testing.T) {
	t.Parallel()

	bondMaturity := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) // 1825 days
	hw := newHullWhite(t, marketdata.NewSimpleQuote(0.03))
	const strike = 0.89

	for _, typ := range []options.OptionType{options.Call, options.Put} {
		e, err := engine.NewFdHullWhiteZeroBondOption(engine.ZeroBondOption{
			Payoff:       options.PlainVanilla{Type: typ, Strike: strike},
			Exercise:     options.NewEuropeanExercise(expiry),
			BondMaturity: bondMaturity,
		}, hw, refDate, engine.WithConfig(testConfig()))
		require.NoError(t, err)
		r, err := e.Results()
		require.NoError(t, err)

		want, err := analytic.HullWhiteZeroBondOption(hw, typ, strike, 1, 5)
		require.NoError(t, err)
		assert.InDelta(t, want, r.NPV, 2e-4, typ.String())
	}
}

func TestAmericanZeroBondPutAtLeastEuropean(t *testing.T) {
	t.Parallel()

	bondMaturity := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rate := marketdata.NewSimpleQuote(0.03)
	hw := newHullWhite(t, rate)
	payoff := options.PlainVanilla{Type: options.Put, Strike: 0.9}

	value := func(ex options.Exercise) *engine.FdHullWhiteZeroBondOption {
		e, err := engine.NewFdHullWhiteZeroBondOption(engine.ZeroBondOption{
			Payoff: payoff, Exercise: ex, BondMaturity: bondMaturity,
		}, hw, refDate, engine.WithConfig(testConfig()))
		require.NoError(t, err)
		return e
	}
	eu := value(options.NewEuropeanExercise(expiry))
	am := value(options.NewAmericanExercise(refDate, expiry))

	re, err := eu.Results()
	require.NoError(t, err)
	ra, err := am.Results()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ra.NPV, re.NPV-1e-9)

	// higher rates cheapen the bond and lift the put
	rate.SetValue(0.04)
	re2, err := eu.Results()
	require.NoError(t, err)
	assert.Greater(t, re2.NPV, re.NPV)
}

func TestZeroBondOptionRejectsExerciseAfterBond(t *testing.T) {
	t.Parallel()

	hw := newHullWhite(t, marketdata.NewSimpleQuote(0.03))
	_, err := engine.NewFdHullWhiteZeroBondOption(engine.ZeroBondOption{
		Payoff:       options.PlainVanilla{Type: options.Call, Strike: 0.9},
		Exercise:     options.NewEuropeanExercise(expiry),
		BondMaturity: refDate.AddDate(0, 6, 0),
	}, hw, refDate)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}
