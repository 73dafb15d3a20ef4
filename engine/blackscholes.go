package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/fdm/innervalue"
	"github.com/meenmo/fdm/instruments/options"
	"github.com/meenmo/fdm/lazy"
	"github.com/meenmo/fdm/marketdata"
	"github.com/meenmo/fdm/mesher"
	"github.com/meenmo/fdm/model"
	"github.com/meenmo/fdm/solver"
	"github.com/meenmo/fdm/stepcondition"
)

// VanillaOption is a plain vanilla option on a dividend paying stock.
type VanillaOption struct {
	Payoff    options.PlainVanilla
	Exercise  options.Exercise
	Dividends marketdata.DividendSchedule
}

// FdBlackScholesVanilla values a VanillaOption under a Black-Scholes
// process. Results are cached until a quote of the process changes.
type FdBlackScholesVanilla struct {
	option  VanillaOption
	process *model.BlackScholesProcess
	refDate time.Time
	s       settings
	cache   *lazy.Object
	results Results
}

// NewFdBlackScholesVanilla checks the contract; nothing is priced until
// Results is called.
func NewFdBlackScholesVanilla(option VanillaOption, process *model.BlackScholesProcess, refDate time.Time, opts ...Option) (*FdBlackScholesVanilla, error) {
	if process == nil {
		return nil, fmt.Errorf("NewFdBlackScholesVanilla: %w: missing process", ErrInvalidArgument)
	}
	if option.Payoff.Type != options.Call && option.Payoff.Type != options.Put {
		return nil, fmt.Errorf("NewFdBlackScholesVanilla: %w: option type %v", ErrInvalidArgument, option.Payoff.Type)
	}
	if !(option.Payoff.Strike > 0) {
		return nil, fmt.Errorf("NewFdBlackScholesVanilla: %w: strike %g", ErrInvalidArgument, option.Payoff.Strike)
	}
	if len(option.Exercise.Dates) == 0 {
		return nil, fmt.Errorf("NewFdBlackScholesVanilla: %w", options.ErrNoExerciseDates)
	}
	s := applySettings(opts)
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewFdBlackScholesVanilla: %w", err)
	}
	s.log = s.log.With().Str("component", "fd_black_scholes_vanilla").Logger()
	return &FdBlackScholesVanilla{
		option:  option,
		process: process,
		refDate: refDate,
		s:       s,
		cache:   lazy.New(process.Version),
	}, nil
}

// Invalidate forces a new valuation on the next call to Results.
func (e *FdBlackScholesVanilla) Invalidate() { e.cache.Invalidate() }

// Results returns NPV, delta, gamma and theta at the current spot. Theta is
// NaN when an exercise or dividend falls on the reference date.
func (e *FdBlackScholesVanilla) Results() (Results, error) {
	if err := e.cache.Calculate(e.calculate); err != nil {
		return Results{}, err
	}
	return e.results, nil
}

func (e *FdBlackScholesVanilla) calculate() error {
	cfg := e.s.cfg
	maturity := e.s.yearFraction(e.refDate, e.option.Exercise.LastDate())
	if maturity <= 0 {
		return fmt.Errorf("FdBlackScholesVanilla: %w: maturity %g", ErrExpired, maturity)
	}

	divs := e.option.Dividends.Between(e.refDate, e.option.Exercise.LastDate())
	cash := make([]mesher.CashDividend, 0, len(divs))
	for _, d := range divs {
		cash = append(cash, mesher.CashDividend{Time: e.s.yearFraction(e.refDate, d.Date), Amount: d.Amount})
	}

	spot := e.process.Spot()
	axis, err := mesher.BlackScholes(mesher.BlackScholesParams{
		Size:          cfg.XGrid,
		Spot:          spot,
		Strike:        e.option.Payoff.Strike,
		Maturity:      maturity,
		Vol:           e.process.Vol(),
		RiskFree:      e.process.RiskFree(),
		Dividend:      e.process.Dividend(),
		CashDividends: cash,
		Eps:           cfg.MesherEps,
		ScaleFactor:   cfg.MesherScaleFactor,
		Density:       cfg.ConcentrationDensity,
	})
	if err != nil {
		return fmt.Errorf("FdBlackScholesVanilla: %w", err)
	}
	m, err := mesher.NewComposite(axis)
	if err != nil {
		return fmt.Errorf("FdBlackScholesVanilla: %w", err)
	}

	calc := innervalue.NewLog(e.option.Payoff, m, 0)
	cond, err := stepcondition.VanillaComposite(divs, e.option.Exercise, m, calc, e.refDate, e.s.dayCounter)
	if err != nil {
		return fmt.Errorf("FdBlackScholesVanilla: %w", err)
	}
	schemeDesc, err := cfg.SchemeDesc()
	if err != nil {
		return fmt.Errorf("FdBlackScholesVanilla: %w", err)
	}

	bs, err := solver.NewBlackScholes(e.process, solver.Desc{
		Mesher:       m,
		Condition:    cond,
		Calculator:   calc,
		Maturity:     maturity,
		TimeSteps:    cfg.TimeSteps,
		DampingSteps: cfg.DampingSteps,
	}, schemeDesc, solver.WithLogger(e.s.log))
	if err != nil {
		return fmt.Errorf("FdBlackScholesVanilla: %w", err)
	}

	var r Results
	if r.NPV, err = bs.ValueAt(spot); err != nil {
		return fmt.Errorf("FdBlackScholesVanilla: %w", err)
	}
	if r.Delta, err = bs.DeltaAt(spot); err != nil {
		return fmt.Errorf("FdBlackScholesVanilla: %w", err)
	}
	if r.Gamma, err = bs.GammaAt(spot); err != nil {
		return fmt.Errorf("FdBlackScholesVanilla: %w", err)
	}
	r.Theta, err = bs.ThetaAt(spot)
	switch {
	case errors.Is(err, solver.ErrThetaAtZero):
		r.Theta = math.NaN()
	case err != nil:
		return fmt.Errorf("FdBlackScholesVanilla: %w", err)
	}

	e.s.log.Debug().
		Str("exercise", e.option.Exercise.Type.String()).
		Str("type", e.option.Payoff.Type.String()).
		Float64("strike", e.option.Payoff.Strike).
		Float64("spot", spot).
		Float64("maturity", maturity).
		Int("dividends", len(divs)).
		Float64("npv", r.NPV).
		Msg("priced")

	e.results = r
	return nil
}
