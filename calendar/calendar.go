package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// NullCalendar treats every day, weekends included, as a business day.
	NullCalendar CalendarID = "NULL"
	TARGET       CalendarID = "TARGET"
	USD          CalendarID = "USD"
	KRW          CalendarID = "KRW"
)

// ErrUnknownCalendar is returned by ParseCalendarID for unsupported names.
var ErrUnknownCalendar = errors.New("calendar: unknown calendar")

// ParseCalendarID maps a calendar name (any case) to its CalendarID.
func ParseCalendarID(s string) (CalendarID, error) {
	switch id := CalendarID(strings.ToUpper(strings.TrimSpace(s))); id {
	case NullCalendar, TARGET, USD, KRW:
		return id, nil
	}
	return "", fmt.Errorf("ParseCalendarID: %w: %q", ErrUnknownCalendar, s)
}

type monthDay struct {
	month time.Month
	day   int
}

// Fixed-date holidays. Moving feasts (Easter) are computed in isHoliday.
var fixedHolidays = map[CalendarID][]monthDay{
	TARGET: {{time.January, 1}, {time.May, 1}, {time.December, 25}, {time.December, 26}},
	USD:    {{time.January, 1}, {time.June, 19}, {time.July, 4}, {time.November, 11}, {time.December, 25}},
	KRW:    {{time.January, 1}, {time.March, 1}, {time.May, 5}, {time.June, 6}, {time.August, 15}, {time.October, 3}, {time.October, 9}, {time.December, 25}},
}

func isHoliday(cal CalendarID, t time.Time) bool {
	for _, h := range fixedHolidays[cal] {
		if t.Month() == h.month && t.Day() == h.day {
			return true
		}
	}
	if cal == TARGET {
		easter := easterSunday(t.Year())
		goodFriday := easter.AddDate(0, 0, -2)
		easterMonday := easter.AddDate(0, 0, 1)
		if sameDay(t, goodFriday) || sameDay(t, easterMonday) {
			return true
		}
	}
	return false
}

// easterSunday uses the anonymous Gregorian algorithm (Meeus/Jones/Butcher).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if cal == NullCalendar {
		return true
	}
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}
