package marketdata

import (
	"sort"
	"time"
)

// Dividend is a cash dividend paid on Date.
type Dividend struct {
	Date   time.Time
	Amount float64
}

// DividendSchedule is a list of cash dividends; use Sorted before relying on order.
type DividendSchedule []Dividend

// Sorted returns a copy ordered by payment date.
func (s DividendSchedule) Sorted() DividendSchedule {
	out := make(DividendSchedule, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Between returns the dividends paid strictly after from and on or before to.
func (s DividendSchedule) Between(from, to time.Time) DividendSchedule {
	var out DividendSchedule
	for _, d := range s.Sorted() {
		if d.Date.After(from) && !d.Date.After(to) {
			out = append(out, d)
		}
	}
	return out
}
