// Package model holds the stochastic model parameters that the
// finite-difference operators discretise.
package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/meenmo/fdm/marketdata"
	"github.com/meenmo/fdm/termstructure"
)

// ErrInvalidParameter is returned for unusable model parameters.
var ErrInvalidParameter = errors.New("model: invalid parameter")

// BlackScholesProcess is dS = (r - q) S dt + σ S dW with term-structure rates
// and constant volatility.
type BlackScholesProcess struct {
	spot     marketdata.Quote
	vol      marketdata.Quote
	riskFree termstructure.YieldCurve
	dividend termstructure.YieldCurve
}

// NewBlackScholesProcess wires the process to its market inputs. The quotes
// and curves are read on use, so later changes are picked up.
func NewBlackScholesProcess(spot, vol marketdata.Quote, riskFree, dividend termstructure.YieldCurve) (*BlackScholesProcess, error) {
	if spot == nil || vol == nil || riskFree == nil || dividend == nil {
		return nil, fmt.Errorf("NewBlackScholesProcess: %w: missing input", ErrInvalidParameter)
	}
	return &BlackScholesProcess{spot: spot, vol: vol, riskFree: riskFree, dividend: dividend}, nil
}

func (p *BlackScholesProcess) Spot() float64                      { return p.spot.Value() }
func (p *BlackScholesProcess) Vol() float64                       { return p.vol.Value() }
func (p *BlackScholesProcess) RiskFree() termstructure.YieldCurve { return p.riskFree }
func (p *BlackScholesProcess) Dividend() termstructure.YieldCurve { return p.dividend }

// X0 is the initial state in log-spot.
func (p *BlackScholesProcess) X0() float64 { return math.Log(p.spot.Value()) }

// Forward is the dividend-yield forward of the spot to t.
func (p *BlackScholesProcess) Forward(t float64) float64 {
	return p.spot.Value() * p.dividend.Discount(t) / p.riskFree.Discount(t)
}

// Version changes whenever any market input changes.
func (p *BlackScholesProcess) Version() uint64 {
	return marketdata.Generation(p.spot, p.vol, p.riskFree, p.dividend)
}

// HullWhite is the one-factor short-rate model r(t) = x(t) + φ(t) with
// dx = -a x dt + σ dW, x(0) = 0, fitted to an initial discount curve.
type HullWhite struct {
	a, sigma float64
	curve    termstructure.YieldCurve
}

// NewHullWhite builds the model on curve with mean reversion a and volatility sigma.
func NewHullWhite(curve termstructure.YieldCurve, a, sigma float64) (*HullWhite, error) {
	if curve == nil {
		return nil, fmt.Errorf("NewHullWhite: %w: missing curve", ErrInvalidParameter)
	}
	if !(a > 0) || !(sigma > 0) {
		return nil, fmt.Errorf("NewHullWhite: %w: a=%g sigma=%g", ErrInvalidParameter, a, sigma)
	}
	return &HullWhite{a: a, sigma: sigma, curve: curve}, nil
}

func (m *HullWhite) Speed() float64                  { return m.a }
func (m *HullWhite) Vol() float64                    { return m.sigma }
func (m *HullWhite) Curve() termstructure.YieldCurve { return m.curve }
func (m *HullWhite) Version() uint64                 { return m.curve.Version() }

// B is the bond-price sensitivity (1 - e^{-a(T-t)}) / a.
func (m *HullWhite) B(t, T float64) float64 {
	return (1 - math.Exp(-m.a*(T-t))) / m.a
}

// Phi is the deterministic shift φ(t) = f(0,t) + σ²/(2a²)(1 - e^{-at})².
func (m *HullWhite) Phi(t float64) float64 {
	e := 1 - math.Exp(-m.a*t)
	return termstructure.InstantaneousForward(m.curve, t) + m.sigma*m.sigma/(2*m.a*m.a)*e*e
}

// DiscountBond is the time-t price of the zero bond maturing at T given the
// state x(t).
func (m *HullWhite) DiscountBond(t, T, x float64) float64 {
	if T <= t {
		return 1
	}
	b := m.B(t, T)
	v := m.sigma * m.sigma / (4 * m.a) * (1 - math.Exp(-2*m.a*t)) * b * b
	return m.curve.Discount(T) / m.curve.Discount(t) * math.Exp(-b*x-v)
}
