// Package marketdata holds the observable inputs of the finite-difference
// engines: versioned quotes and cash dividend schedules.
//
// A quote carries a version counter that is bumped on every change. Lazily
// evaluated solvers fold the versions of their inputs into a generation token
// (see Generation) and recompute only when the token moves. Quotes are not
// safe for concurrent mutation.
package marketdata

import "math"

// Observable is anything whose changes can be detected by comparing versions.
type Observable interface {
	Version() uint64
}

// Quote is a market observable with a current value.
type Quote interface {
	Observable
	Value() float64
}

// SimpleQuote is a settable quote.
type SimpleQuote struct {
	value   float64
	version uint64
}

// NewSimpleQuote returns a quote holding v.
func NewSimpleQuote(v float64) *SimpleQuote {
	return &SimpleQuote{value: v}
}

func (q *SimpleQuote) Value() float64  { return q.value }
func (q *SimpleQuote) Version() uint64 { return q.version }

// SetValue updates the quote. Setting the current value again is not a
// change and leaves the version untouched.
func (q *SimpleQuote) SetValue(v float64) {
	if v == q.value || (math.IsNaN(v) && math.IsNaN(q.value)) {
		return
	}
	q.value = v
	q.version++
}

// Touch bumps the version without changing the value, e.g. after a term
// structure behind the quote was rebuilt.
func (q *SimpleQuote) Touch() {
	q.version++
}

// Generation folds the versions of obs into one token. Versions only grow,
// so any change in any input changes the sum.
func Generation(obs ...Observable) uint64 {
	var g uint64
	for _, o := range obs {
		if o == nil {
			continue
		}
		g += o.Version()
	}
	return g
}
