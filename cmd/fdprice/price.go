package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meenmo/fdm/analytic"
	"github.com/meenmo/fdm/calendar"
	"github.com/meenmo/fdm/config"
	"github.com/meenmo/fdm/engine"
	"github.com/meenmo/fdm/instruments/options"
	"github.com/meenmo/fdm/marketdata"
	"github.com/meenmo/fdm/model"
	"github.com/meenmo/fdm/termstructure"
	"github.com/meenmo/fdm/utils"
)

const (
	modelBlackScholes = "black_scholes"
	modelHullWhite    = "hull_white"

	defaultPrecision = 6
)

type priceInput struct {
	TaskID        string `json:"task_id,omitempty"`
	Model         string `json:"model"`
	ReferenceDate string `json:"reference_date"`
	DayCount      string `json:"day_count,omitempty"`

	OptionType string  `json:"option_type"`
	Strike     float64 `json:"strike"`
	Exercise   string  `json:"exercise"`
	Expiry     string  `json:"expiry"`
	// Bermudan dates are either listed or generated every
	// ExerciseFrequencyMonths back from expiry on Calendar.
	ExerciseDates           []string `json:"exercise_dates,omitempty"`
	ExerciseFrequencyMonths int      `json:"exercise_frequency_months,omitempty"`
	Calendar                string   `json:"calendar,omitempty"`

	Rate float64 `json:"rate"`

	// black_scholes
	Spot          float64        `json:"spot,omitempty"`
	Vol           float64        `json:"vol,omitempty"`
	DividendYield float64        `json:"dividend_yield,omitempty"`
	Dividends     []dividendJSON `json:"dividends,omitempty"`

	// hull_white
	BondMaturity  string  `json:"bond_maturity,omitempty"`
	MeanReversion float64 `json:"mean_reversion,omitempty"`
	Sigma         float64 `json:"sigma,omitempty"`

	Grid      *gridJSON `json:"grid,omitempty"`
	Precision *uint32   `json:"precision,omitempty"`
}

type dividendJSON struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// gridJSON overrides the configured grid for one contract.
type gridJSON struct {
	Scheme       string `json:"scheme,omitempty"`
	TimeSteps    int    `json:"time_steps,omitempty"`
	XGrid        int    `json:"x_grid,omitempty"`
	DampingSteps *int   `json:"damping_steps,omitempty"`
}

type priceOutput struct {
	TaskID      string   `json:"task_id" msgpack:"task_id"`
	Model       string   `json:"model,omitempty" msgpack:"model,omitempty"`
	Scheme      string   `json:"scheme,omitempty" msgpack:"scheme,omitempty"`
	NPV         float64  `json:"npv" msgpack:"npv"`
	Delta       *float64 `json:"delta,omitempty" msgpack:"delta,omitempty"`
	Gamma       *float64 `json:"gamma,omitempty" msgpack:"gamma,omitempty"`
	Theta       *float64 `json:"theta,omitempty" msgpack:"theta,omitempty"`
	AnalyticNPV *float64 `json:"analytic_npv,omitempty" msgpack:"analytic_npv,omitempty"`
	Error       string   `json:"error,omitempty" msgpack:"error,omitempty"`
}

func (in *priceInput) ensureTaskID() {
	if strings.TrimSpace(in.TaskID) == "" {
		in.TaskID = uuid.New().String()
	}
}

func (in priceInput) config(base config.Config) (config.Config, error) {
	cfg := base
	if g := in.Grid; g != nil {
		if g.Scheme != "" {
			cfg.Scheme = g.Scheme
		}
		if g.TimeSteps != 0 {
			cfg.TimeSteps = g.TimeSteps
		}
		if g.XGrid != 0 {
			cfg.XGrid = g.XGrid
		}
		if g.DampingSteps != nil {
			cfg.DampingSteps = *g.DampingSteps
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid grid: %w", err)
	}
	return cfg, nil
}

func (in priceInput) exercise(ref time.Time) (options.Exercise, error) {
	expiry, err := utils.ParseDate(in.Expiry)
	if err != nil {
		return options.Exercise{}, fmt.Errorf("invalid expiry: %w", err)
	}
	typ, err := options.ParseExerciseType(in.Exercise)
	if err != nil {
		return options.Exercise{}, err
	}
	switch typ {
	case options.American:
		return options.NewAmericanExercise(ref, expiry), nil
	case options.Bermudan:
		if len(in.ExerciseDates) > 0 {
			dates, err := utils.ParseDates(in.ExerciseDates)
			if err != nil {
				return options.Exercise{}, fmt.Errorf("invalid exercise_dates: %w", err)
			}
			return options.NewBermudanExercise(dates)
		}
		cal := calendar.NullCalendar
		if in.Calendar != "" {
			if cal, err = calendar.ParseCalendarID(in.Calendar); err != nil {
				return options.Exercise{}, err
			}
		}
		dates, err := options.BermudanSchedule(ref, expiry, in.ExerciseFrequencyMonths, cal)
		if err != nil {
			return options.Exercise{}, err
		}
		return options.NewBermudanExercise(dates)
	}
	return options.NewEuropeanExercise(expiry), nil
}

func process(in priceInput, base config.Config, log zerolog.Logger) (*priceOutput, error) {
	ref, err := utils.ParseDate(in.ReferenceDate)
	if err != nil {
		return nil, fmt.Errorf("invalid reference_date: %w", err)
	}
	dc := utils.Act365F
	if in.DayCount != "" {
		if dc, err = utils.ParseDayCounter(in.DayCount); err != nil {
			return nil, err
		}
	}
	typ, err := options.ParseOptionType(in.OptionType)
	if err != nil {
		return nil, err
	}
	ex, err := in.exercise(ref)
	if err != nil {
		return nil, err
	}
	cfg, err := in.config(base)
	if err != nil {
		return nil, err
	}
	precision := uint32(defaultPrecision)
	if in.Precision != nil {
		precision = *in.Precision
	}

	opts := []engine.Option{engine.WithConfig(cfg), engine.WithDayCounter(dc), engine.WithLogger(log)}
	payoff := options.PlainVanilla{Type: typ, Strike: in.Strike}
	maturity := dc.YearFraction(ref, ex.LastDate())
	out := &priceOutput{TaskID: in.TaskID, Model: in.Model, Scheme: cfg.Scheme}

	switch in.Model {
	case modelBlackScholes:
		divs := make(marketdata.DividendSchedule, 0, len(in.Dividends))
		for _, d := range in.Dividends {
			date, err := utils.ParseDate(d.Date)
			if err != nil {
				return nil, fmt.Errorf("invalid dividend date: %w", err)
			}
			divs = append(divs, marketdata.Dividend{Date: date, Amount: d.Amount})
		}
		bs, err := model.NewBlackScholesProcess(
			marketdata.NewSimpleQuote(in.Spot),
			marketdata.NewSimpleQuote(in.Vol),
			termstructure.NewFlatForwardRate(in.Rate),
			termstructure.NewFlatForwardRate(in.DividendYield),
		)
		if err != nil {
			return nil, err
		}
		e, err := engine.NewFdBlackScholesVanilla(engine.VanillaOption{Payoff: payoff, Exercise: ex, Dividends: divs}, bs, ref, opts...)
		if err != nil {
			return nil, err
		}
		r, err := e.Results()
		if err != nil {
			return nil, err
		}
		out.NPV = utils.RoundTo(r.NPV, precision)
		out.Delta = rounded(r.Delta, precision)
		out.Gamma = rounded(r.Gamma, precision)
		out.Theta = rounded(r.Theta, precision)

		if ex.Type == options.European && len(divs.Between(ref, ex.LastDate())) == 0 {
			g, err := analytic.BlackScholes(typ, in.Spot, in.Strike, maturity, in.Rate, in.DividendYield, in.Vol)
			if err != nil {
				return nil, err
			}
			out.AnalyticNPV = rounded(g.Price, precision)
		}

	case modelHullWhite:
		bondMaturity, err := utils.ParseDate(in.BondMaturity)
		if err != nil {
			return nil, fmt.Errorf("invalid bond_maturity: %w", err)
		}
		hw, err := model.NewHullWhite(termstructure.NewFlatForwardRate(in.Rate), in.MeanReversion, in.Sigma)
		if err != nil {
			return nil, err
		}
		e, err := engine.NewFdHullWhiteZeroBondOption(engine.ZeroBondOption{Payoff: payoff, Exercise: ex, BondMaturity: bondMaturity}, hw, ref, opts...)
		if err != nil {
			return nil, err
		}
		r, err := e.Results()
		if err != nil {
			return nil, err
		}
		out.NPV = utils.RoundTo(r.NPV, precision)

		if ex.Type == options.European {
			v, err := analytic.HullWhiteZeroBondOption(hw, typ, in.Strike, maturity, dc.YearFraction(ref, bondMaturity))
			if err != nil {
				return nil, err
			}
			out.AnalyticNPV = rounded(v, precision)
		}

	default:
		return nil, fmt.Errorf("unsupported model %q (use %s or %s)", in.Model, modelBlackScholes, modelHullWhite)
	}
	return out, nil
}

// rounded is nil for NaN so the field is left out of the output.
func rounded(v float64, precision uint32) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	r := utils.RoundTo(v, precision)
	return &r
}
