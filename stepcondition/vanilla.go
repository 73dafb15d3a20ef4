package stepcondition

import (
	"fmt"
	"time"

	"github.com/meenmo/fdm/innervalue"
	"github.com/meenmo/fdm/instruments/options"
	"github.com/meenmo/fdm/marketdata"
	"github.com/meenmo/fdm/mesher"
	"github.com/meenmo/fdm/utils"
)

// VanillaComposite builds the standard conditions of a vanilla option: a
// Dividend condition for the cash dividends paid after ref, and the
// exercise condition of ex. Dividends act on direction 0 of m, taken as log
// spot.
func VanillaComposite(
	divs marketdata.DividendSchedule,
	ex options.Exercise,
	m mesher.Mesher,
	calc innervalue.Calculator,
	ref time.Time,
	dc utils.DayCounter,
) (*Composite, error) {
	var (
		stoppingTimes [][]float64
		conds         []Condition
	)

	if len(divs) > 0 {
		var times, amounts []float64
		for _, d := range divs.Sorted() {
			t := dc.YearFraction(ref, d.Date)
			if t <= 0 {
				continue
			}
			times = append(times, t)
			amounts = append(amounts, d.Amount)
		}
		if len(times) > 0 {
			div := NewDividend(times, amounts, m, 0)
			stoppingTimes = append(stoppingTimes, div.Times())
			conds = append(conds, div)
		}
	}

	switch ex.Type {
	case options.European:
	case options.American:
		conds = append(conds, NewAmerican(calc))
	case options.Bermudan:
		var times []float64
		for _, t := range dc.YearFractions(ref, ex.Dates) {
			if t >= 0 {
				times = append(times, t)
			}
		}
		b := NewBermudan(calc, times)
		stoppingTimes = append(stoppingTimes, b.ExerciseTimes())
		conds = append(conds, b)
	default:
		return nil, fmt.Errorf("VanillaComposite: %w: %v", ErrUnsupportedExercise, ex.Type)
	}

	return NewComposite(stoppingTimes, conds), nil
}
