package options

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meenmo/fdm/calendar"
	"github.com/meenmo/fdm/utils"
)

// ExerciseType is the exercise style of an option.
type ExerciseType int

const (
	European ExerciseType = iota
	American
	Bermudan
)

func (e ExerciseType) String() string {
	switch e {
	case European:
		return "European"
	case American:
		return "American"
	case Bermudan:
		return "Bermudan"
	}
	return fmt.Sprintf("ExerciseType(%d)", int(e))
}

// ParseExerciseType maps "european", "american" or "bermudan" to an ExerciseType.
func ParseExerciseType(s string) (ExerciseType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "european", "eu", "":
		return European, nil
	case "american", "am":
		return American, nil
	case "bermudan", "bm":
		return Bermudan, nil
	}
	return 0, fmt.Errorf("ParseExerciseType: unknown exercise type %q", s)
}

var (
	// ErrNoExerciseDates is returned when an exercise has no dates.
	ErrNoExerciseDates = errors.New("options: exercise needs at least one date")
)

// Exercise is an exercise schedule. European exercises hold the expiry only,
// American exercises hold [earliest, expiry], Bermudan ones every exercise date.
// Dates are kept sorted.
type Exercise struct {
	Type  ExerciseType
	Dates []time.Time
}

// NewEuropeanExercise exercises on expiry only.
func NewEuropeanExercise(expiry time.Time) Exercise {
	return Exercise{Type: European, Dates: []time.Time{expiry}}
}

// NewAmericanExercise exercises any time in [earliest, expiry].
func NewAmericanExercise(earliest, expiry time.Time) Exercise {
	return Exercise{Type: American, Dates: []time.Time{earliest, expiry}}
}

// NewBermudanExercise exercises on each of dates.
func NewBermudanExercise(dates []time.Time) (Exercise, error) {
	if len(dates) == 0 {
		return Exercise{}, fmt.Errorf("NewBermudanExercise: %w", ErrNoExerciseDates)
	}
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	utils.SortDates(sorted)
	return Exercise{Type: Bermudan, Dates: sorted}, nil
}

// LastDate is the expiry of the exercise.
func (e Exercise) LastDate() time.Time {
	if len(e.Dates) == 0 {
		return time.Time{}
	}
	return e.Dates[len(e.Dates)-1]
}

// BermudanSchedule rolls backward from expiry in steps of months, stopping
// after start, and adjusts every date but expiry with cal (Modified
// Following). Expiry itself is always the last exercise date, unadjusted.
func BermudanSchedule(start, expiry time.Time, months int, cal calendar.CalendarID) ([]time.Time, error) {
	if months <= 0 {
		return nil, fmt.Errorf("BermudanSchedule: months must be positive, got %d", months)
	}
	if !expiry.After(start) {
		return nil, fmt.Errorf("BermudanSchedule: expiry %s not after start %s", expiry.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	var unadjusted []time.Time
	for k := 0; ; k++ {
		d := utils.AddMonth(expiry, -months*k)
		if !d.After(start) {
			break
		}
		unadjusted = append(unadjusted, d)
	}

	out := make([]time.Time, 0, len(unadjusted))
	for i := len(unadjusted) - 1; i >= 0; i-- {
		d := unadjusted[i]
		if i > 0 {
			d = calendar.Adjust(cal, d)
		}
		if n := len(out); n > 0 && !d.After(out[n-1]) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
