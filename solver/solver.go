// Package solver rolls finite-difference grids back from maturity to the
// valuation date.
//
// Backward dispatches to the configured time-stepping scheme and runs the
// implicit Euler damping phase in front of it. Solver1D prices a
// single-factor contract with it and answers value, greek and theta queries
// from a spline fitted to the rolled-back grid. BlackScholes and HullWhite
// assemble the model operators around a Solver1D.
//
// Solvers recompute lazily: results are cached until Invalidate is called or
// the generation token of their market inputs moves. They are not safe for
// concurrent use.
package solver

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/meenmo/fdm/lazy"
	"github.com/meenmo/fdm/scheme"
)

var (
	// ErrThetaAtZero is returned by ThetaAt when a stopping time sits at zero.
	ErrThetaAtZero = errors.New("solver: stopping time at zero, can't calculate theta")
	// ErrInvalidInterval is returned when a rollback would run forward in time.
	ErrInvalidInterval = scheme.ErrInvalidInterval
	// ErrNegativeSteps is returned for negative or all-zero step counts.
	ErrNegativeSteps = errors.New("solver: invalid step count")
	// ErrInvalidDesc is returned for an incomplete solver description.
	ErrInvalidDesc = errors.New("solver: invalid solver description")
)

// Option configures a solver.
type Option func(*options)

type options struct {
	log   zerolog.Logger
	token lazy.TokenSource
}

func defaultOptions() options {
	return options{log: zerolog.Nop()}
}

// WithLogger sets the logger; solvers log at debug level only.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTokenSource ties lazy recomputation to the generation token of the
// market inputs.
func WithTokenSource(src lazy.TokenSource) Option {
	return func(o *options) { o.token = src }
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
