// Package engine prices option contracts with the finite-difference
// solvers. Engines take their grid sizes and scheme from a config.Config and
// rebuild mesher, conditions and solver whenever their market inputs move.
//
// Engines are lazy and not safe for concurrent use.
package engine

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/meenmo/fdm/config"
	"github.com/meenmo/fdm/utils"
)

var (
	// ErrExpired is returned when the last exercise date is not after the
	// reference date.
	ErrExpired = errors.New("engine: option has expired")
	// ErrInvalidArgument is returned for missing models or malformed contracts.
	ErrInvalidArgument = errors.New("engine: invalid argument")
)

// Results are the outputs of a finite-difference valuation. Greeks an
// engine does not produce are zero.
type Results struct {
	NPV   float64
	Delta float64
	Gamma float64
	Theta float64
}

// Option configures an engine.
type Option func(*settings)

type settings struct {
	cfg        config.Config
	dayCounter utils.DayCounter
	log        zerolog.Logger
}

func defaultSettings() settings {
	return settings{
		cfg:        config.GetConfig(),
		dayCounter: utils.Act365F,
		log:        zerolog.Nop(),
	}
}

// WithConfig replaces the active configuration for this engine.
func WithConfig(cfg config.Config) Option {
	return func(s *settings) { s.cfg = cfg }
}

// WithDayCounter sets the convention converting dates to model time.
func WithDayCounter(dc utils.DayCounter) Option {
	return func(s *settings) { s.dayCounter = dc }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *settings) { s.log = log }
}

func applySettings(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// yearFraction converts d to model time measured from ref.
func (s settings) yearFraction(ref, d time.Time) float64 {
	return s.dayCounter.YearFraction(ref, d)
}
