package options

import (
	"fmt"
	"math"
	"strings"
)

// OptionType is the call/put flag of a vanilla payoff.
type OptionType int

const (
	Call OptionType = 1
	Put  OptionType = -1
)

func (o OptionType) String() string {
	switch o {
	case Call:
		return "Call"
	case Put:
		return "Put"
	}
	return fmt.Sprintf("OptionType(%d)", int(o))
}

// ParseOptionType maps "call"/"put" (any case) to an OptionType.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("ParseOptionType: unknown option type %q", s)
}

// Payoff maps the underlying's value at exercise to the option's value.
type Payoff interface {
	Value(underlying float64) float64
}

// Kinked is implemented by payoffs with a single point of non-differentiability;
// cell averaging splits its quadrature there.
type Kinked interface {
	Kink() float64
}

// PlainVanilla is max(ω(S − K), 0).
type PlainVanilla struct {
	Type   OptionType
	Strike float64
}

func (p PlainVanilla) Value(s float64) float64 {
	return math.Max(float64(p.Type)*(s-p.Strike), 0)
}

func (p PlainVanilla) Kink() float64 { return p.Strike }
