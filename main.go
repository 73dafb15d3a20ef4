package main

import (
	"fmt"
	"time"

	"github.com/meenmo/fdm/analytic"
	"github.com/meenmo/fdm/config"
	"github.com/meenmo/fdm/engine"
	"github.com/meenmo/fdm/instruments/options"
	"github.com/meenmo/fdm/marketdata"
	"github.com/meenmo/fdm/model"
	"github.com/meenmo/fdm/termstructure"
)

func main() {
	refDate := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	process, err := model.NewBlackScholesProcess(
		marketdata.NewSimpleQuote(100),
		marketdata.NewSimpleQuote(0.2),
		termstructure.NewFlatForwardRate(0.05),
		termstructure.NewFlatForwardRate(0),
	)
	if err != nil {
		panic(err)
	}
	option := engine.VanillaOption{
		Payoff:   options.PlainVanilla{Type: options.Call, Strike: 100},
		Exercise: options.NewEuropeanExercise(expiry),
	}

	ref, err := analytic.BlackScholes(options.Call, 100, 100, 1, 0.05, 0, 0.2)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Closed form:          %.6f\n", ref.Price)

	for _, name := range []string{"douglas", "crank-nicolson", "craig-sneyd", "hundsdorfer", "tr-bdf2", "implicit-euler"} {
		cfg := config.DefaultConfig
		cfg.Scheme = name
		cfg.XGrid = 201
		cfg.TimeSteps = 200
		cfg.DampingSteps = 2

		e, err := engine.NewFdBlackScholesVanilla(option, process, refDate, engine.WithConfig(cfg))
		if err != nil {
			panic(err)
		}
		r, err := e.Results()
		if err != nil {
			panic(err)
		}
		fmt.Printf("%-21s %.6f (err %+.2e)\n", name+":", r.NPV, r.NPV-ref.Price)
	}
}
