package engine

import (
	"fmt"
	"time"

	"github.com/meenmo/fdm/innervalue"
	"github.com/meenmo/fdm/instruments/options"
	"github.com/meenmo/fdm/lazy"
	"github.com/meenmo/fdm/mesher"
	"github.com/meenmo/fdm/model"
	"github.com/meenmo/fdm/solver"
	"github.com/meenmo/fdm/stepcondition"
)

// ZeroBondOption is an option to buy or sell a unit zero-coupon bond
// maturing on BondMaturity at Payoff.Strike.
type ZeroBondOption struct {
	Payoff       options.PlainVanilla
	Exercise     options.Exercise
	BondMaturity time.Time
}

// FdHullWhiteZeroBondOption values a ZeroBondOption under a one-factor
// Hull-White model. Results are cached until the model's curve changes.
type FdHullWhiteZeroBondOption struct {
	option  ZeroBondOption
	model   *model.HullWhite
	refDate time.Time
	s       settings
	cache   *lazy.Object
	results Results
}

func NewFdHullWhiteZeroBondOption(option ZeroBondOption, hw *model.HullWhite, refDate time.Time, opts ...Option) (*FdHullWhiteZeroBondOption, error) {
	if hw == nil {
		return nil, fmt.Errorf("NewFdHullWhiteZeroBondOption: %w: missing model", ErrInvalidArgument)
	}
	if option.Payoff.Type != options.Call && option.Payoff.Type != options.Put {
		return nil, fmt.Errorf("NewFdHullWhiteZeroBondOption: %w: option type %v", ErrInvalidArgument, option.Payoff.Type)
	}
	if len(option.Exercise.Dates) == 0 {
		return nil, fmt.Errorf("NewFdHullWhiteZeroBondOption: %w", options.ErrNoExerciseDates)
	}
	if option.Exercise.LastDate().After(option.BondMaturity) {
		return nil, fmt.Errorf("NewFdHullWhiteZeroBondOption: %w: exercise after bond maturity", ErrInvalidArgument)
	}
	s := applySettings(opts)
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewFdHullWhiteZeroBondOption: %w", err)
	}
	s.log = s.log.With().Str("component", "fd_hull_white_zero_bond_option").Logger()
	return &FdHullWhiteZeroBondOption{
		option:  option,
		model:   hw,
		refDate: refDate,
		s:       s,
		cache:   lazy.New(hw.Version),
	}, nil
}

func (e *FdHullWhiteZeroBondOption) Invalidate() { e.cache.Invalidate() }

// Results returns the NPV; greeks are not produced.
func (e *FdHullWhiteZeroBondOption) Results() (Results, error) {
	if err := e.cache.Calculate(e.calculate); err != nil {
		return Results{}, err
	}
	return e.results, nil
}

func (e *FdHullWhiteZeroBondOption) calculate() error {
	cfg := e.s.cfg
	maturity := e.s.yearFraction(e.refDate, e.option.Exercise.LastDate())
	if maturity <= 0 {
		return fmt.Errorf("FdHullWhiteZeroBondOption: %w: maturity %g", ErrExpired, maturity)
	}
	bondMaturity := e.s.yearFraction(e.refDate, e.option.BondMaturity)

	// odd node count keeps x = 0 on the grid
	size := cfg.XGrid | 1
	axis, err := mesher.OrnsteinUhlenbeck(size, e.model.Speed(), e.model.Vol(), maturity, cfg.MesherEps, cfg.MesherScaleFactor)
	if err != nil {
		return fmt.Errorf("FdHullWhiteZeroBondOption: %w", err)
	}
	m, err := mesher.NewComposite(axis)
	if err != nil {
		return fmt.Errorf("FdHullWhiteZeroBondOption: %w", err)
	}

	calc := innervalue.NewZeroBond(e.model, bondMaturity, e.option.Payoff, m, 0)
	cond, err := stepcondition.VanillaComposite(nil, e.option.Exercise, m, calc, e.refDate, e.s.dayCounter)
	if err != nil {
		return fmt.Errorf("FdHullWhiteZeroBondOption: %w", err)
	}
	schemeDesc, err := cfg.SchemeDesc()
	if err != nil {
		return fmt.Errorf("FdHullWhiteZeroBondOption: %w", err)
	}

	hw, err := solver.NewHullWhite(e.model, solver.Desc{
		Mesher:       m,
		Condition:    cond,
		Calculator:   calc,
		Maturity:     maturity,
		TimeSteps:    cfg.TimeSteps,
		DampingSteps: cfg.DampingSteps,
	}, schemeDesc, solver.WithLogger(e.s.log))
	if err != nil {
		return fmt.Errorf("FdHullWhiteZeroBondOption: %w", err)
	}

	npv, err := hw.ValueAt(0)
	if err != nil {
		return fmt.Errorf("FdHullWhiteZeroBondOption: %w", err)
	}

	e.s.log.Debug().
		Str("exercise", e.option.Exercise.Type.String()).
		Float64("strike", e.option.Payoff.Strike).
		Float64("maturity", maturity).
		Float64("bond_maturity", bondMaturity).
		Float64("npv", npv).
		Msg("priced")

	e.results = Results{NPV: npv}
	return nil
}
