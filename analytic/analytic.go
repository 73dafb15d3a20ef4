// Package analytic has the closed-form prices the finite-difference engines
// are checked against.
package analytic

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/fdm/instruments/options"
	"github.com/meenmo/fdm/model"
)

// ErrInvalidInput is returned for parameters outside the model's domain.
var ErrInvalidInput = errors.New("analytic: invalid input")

// Greeks of a European option. Theta is per year of calendar time.
type Greeks struct {
	Price float64
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
}

// BlackScholes prices a European option with continuous rates r and q.
func BlackScholes(typ options.OptionType, spot, strike, maturity, r, q, vol float64) (Greeks, error) {
	if spot <= 0 || strike <= 0 || maturity <= 0 || vol <= 0 {
		return Greeks{}, fmt.Errorf("BlackScholes: %w: spot %g, strike %g, maturity %g, vol %g",
			ErrInvalidInput, spot, strike, maturity, vol)
	}
	n := distuv.UnitNormal
	sqrtT := math.Sqrt(maturity)
	d1 := (math.Log(spot/strike) + (r-q+0.5*vol*vol)*maturity) / (vol * sqrtT)
	d2 := d1 - vol*sqrtT
	dq := math.Exp(-q * maturity)
	dr := math.Exp(-r * maturity)
	w := float64(typ)

	g := Greeks{
		Price: w * (spot*dq*n.CDF(w*d1) - strike*dr*n.CDF(w*d2)),
		Delta: w * dq * n.CDF(w*d1),
		Gamma: dq * n.Prob(d1) / (spot * vol * sqrtT),
		Vega:  spot * dq * n.Prob(d1) * sqrtT,
	}
	g.Theta = -spot*dq*n.Prob(d1)*vol/(2*sqrtT) -
		w*r*strike*dr*n.CDF(w*d2) +
		w*q*spot*dq*n.CDF(w*d1)
	return g, nil
}

// HullWhiteZeroBondOption is Jamshidian's price of a European option
// expiring at maturity on the zero bond maturing at bondMaturity.
func HullWhiteZeroBondOption(hw *model.HullWhite, typ options.OptionType, strike, maturity, bondMaturity float64) (float64, error) {
	if hw == nil || !(bondMaturity > maturity) || maturity <= 0 || strike <= 0 {
		return 0, fmt.Errorf("HullWhiteZeroBondOption: %w: strike %g, maturity %g, bond maturity %g",
			ErrInvalidInput, strike, maturity, bondMaturity)
	}
	a, sigma := hw.Speed(), hw.Vol()
	pT := hw.Curve().Discount(maturity)
	pS := hw.Curve().Discount(bondMaturity)

	sigmaP := sigma * math.Sqrt((1-math.Exp(-2*a*maturity))/(2*a)) * hw.B(maturity, bondMaturity)
	h := math.Log(pS/(pT*strike))/sigmaP + 0.5*sigmaP

	n := distuv.UnitNormal
	if typ == options.Call {
		return pS*n.CDF(h) - strike*pT*n.CDF(h-sigmaP), nil
	}
	return strike*pT*n.CDF(-h+sigmaP) - pS*n.CDF(-h), nil
}
