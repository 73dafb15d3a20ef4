package utils

import (
	"fmt"
	"strings"
	"time"
)

// DayCounter names a day count convention used to turn dates into model time.
type DayCounter string

const (
	Act360     DayCounter = "ACT/360"
	Act365F    DayCounter = "ACT/365F"
	Thirty360  DayCounter = "30/360"
	Thirty360E DayCounter = "30E/360"
)

// ParseDayCounter accepts the usual spellings ("ACT/365F", "act/365 fixed", ...).
func ParseDayCounter(s string) (DayCounter, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACT/360", "ACTUAL/360":
		return Act360, nil
	case "ACT/365F", "ACT/365", "ACT/365 FIXED", "ACTUAL/365 (FIXED)":
		return Act365F, nil
	case "30/360", "30U/360":
		return Thirty360, nil
	case "30E/360", "EUROBOND":
		return Thirty360E, nil
	}
	return "", fmt.Errorf("ParseDayCounter: unsupported day count %q", s)
}

// YearFraction computes the year fraction between two dates. Unknown
// conventions fall back to ACT/365F, the model time axis of every solver.
func (dc DayCounter) YearFraction(start, end time.Time) float64 {
	switch dc {
	case Act360:
		return Days(start, end) / 360.0
	case Thirty360, Thirty360E:
		// D1 and D2 are capped at 30
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		return Days(start, end) / 365.0
	}
}

// YearFractions maps dates to year fractions measured from ref.
func (dc DayCounter) YearFractions(ref time.Time, dates []time.Time) []float64 {
	out := make([]float64, len(dates))
	for i, d := range dates {
		out[i] = dc.YearFraction(ref, d)
	}
	return out
}
