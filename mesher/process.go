package mesher

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/fdm/termstructure"
)

const (
	// DefaultEps is the tail probability cut off on each side of the grid.
	DefaultEps = 1e-4
	// DefaultScaleFactor widens the quantile-based bounds.
	DefaultScaleFactor = 1.5
)

// CashDividend is a dividend on the model time axis.
type CashDividend struct {
	Time   float64
	Amount float64
}

// BlackScholesParams describes the log-spot grid of a Black-Scholes model.
type BlackScholesParams struct {
	Size     int
	Spot     float64
	Strike   float64
	Maturity float64
	Vol      float64
	RiskFree termstructure.YieldCurve
	Dividend termstructure.YieldCurve
	// CashDividends shift the forward down on their payment dates.
	CashDividends []CashDividend
	// Eps and ScaleFactor default to DefaultEps and DefaultScaleFactor.
	Eps         float64
	ScaleFactor float64
	// Density > 0 concentrates nodes around log(Strike).
	Density float64
}

// BlackScholes builds a grid in x = ln(S) covering the forward range of the
// underlying up to maturity widened by the eps-quantile of the terminal
// log-return distribution.
func BlackScholes(p BlackScholesParams) (*Fdm1D, error) {
	if p.Spot <= 0 || p.Maturity <= 0 || p.Vol <= 0 {
		return nil, fmt.Errorf("BlackScholes: %w: spot %g, maturity %g, vol %g", ErrInvalidRange, p.Spot, p.Maturity, p.Vol)
	}
	if p.RiskFree == nil || p.Dividend == nil {
		return nil, fmt.Errorf("BlackScholes: %w: missing rate curves", ErrInvalidRange)
	}
	eps, scale := p.Eps, p.ScaleFactor
	if eps <= 0 {
		eps = DefaultEps
	}
	if scale <= 0 {
		scale = DefaultScaleFactor
	}

	divs := append([]CashDividend(nil), p.CashDividends...)
	sort.Slice(divs, func(i, j int) bool { return divs[i].Time < divs[j].Time })

	spot := p.Spot
	mi, ma := spot, spot
	forward := func(s, t float64) float64 {
		return s * p.Dividend.Discount(t) / p.RiskFree.Discount(t)
	}
	track := func(f float64) {
		mi = math.Min(mi, f)
		ma = math.Max(ma, f)
	}
	for _, d := range divs {
		if d.Time <= 0 || d.Time > p.Maturity {
			continue
		}
		track(forward(spot, d.Time))
		spot -= d.Amount
		track(forward(spot, d.Time))
	}
	track(forward(spot, p.Maturity))
	if mi <= 0 {
		return nil, fmt.Errorf("BlackScholes: %w: dividends exceed the forward", ErrInvalidRange)
	}

	normInvEps := distuv.UnitNormal.Quantile(1 - eps)
	width := p.Vol * math.Sqrt(p.Maturity) * normInvEps * scale
	xMin := math.Log(mi) - width
	xMax := math.Log(ma) + width

	if p.Density > 0 && p.Strike > 0 {
		return Concentrating(xMin, xMax, p.Size, math.Log(p.Strike), p.Density)
	}
	return Uniform(xMin, xMax, p.Size)
}

// OrnsteinUhlenbeck builds a uniform grid for a zero-mean OU state variable
// dx = -speed·x dt + vol dW started at zero, e.g. the Hull-White factor.
// An odd size puts x = 0 on a node.
func OrnsteinUhlenbeck(size int, speed, vol, maturity, eps, scaleFactor float64) (*Fdm1D, error) {
	if vol <= 0 || maturity <= 0 {
		return nil, fmt.Errorf("OrnsteinUhlenbeck: %w: vol %g, maturity %g", ErrInvalidRange, vol, maturity)
	}
	if eps <= 0 {
		eps = DefaultEps
	}
	if scaleFactor <= 0 {
		scaleFactor = DefaultScaleFactor
	}
	variance := vol * vol * maturity
	if math.Abs(speed) > 1e-8 {
		variance = vol * vol * (1 - math.Exp(-2*speed*maturity)) / (2 * speed)
	}
	half := math.Sqrt(variance) * distuv.UnitNormal.Quantile(1-eps) * scaleFactor
	return Uniform(-half, half, size)
}
