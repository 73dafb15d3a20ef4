// Package scheme implements the time-stepping schemes of the
// finite-difference rollback and the driver that lands every step on the
// mandatory stopping times.
//
// A Desc names a scheme and its two weights. NewEvolver turns it into an
// Evolver bound to an operator and a boundary condition set; Model rolls a
// grid backward with that evolver while applying step conditions.
package scheme

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownScheme is returned for a scheme type without an evolver.
	ErrUnknownScheme = errors.New("scheme: unknown scheme type")
	// ErrNegativeTime is returned when a step would end before time zero.
	ErrNegativeTime = errors.New("scheme: a step towards negative time given")
	// ErrInvalidInterval is returned when a rollback would run forward in time.
	ErrInvalidInterval = errors.New("scheme: rollback must go backward in time")
)

// Type identifies a time-stepping scheme.
type Type int

const (
	Hundsdorfer Type = iota
	Douglas
	CraigSneyd
	ModifiedCraigSneyd
	ImplicitEuler
	ExplicitEuler
	MethodOfLines
	TrBDF2
	CrankNicolson
)

var typeNames = map[Type]string{
	Hundsdorfer:        "Hundsdorfer",
	Douglas:            "Douglas",
	CraigSneyd:         "CraigSneyd",
	ModifiedCraigSneyd: "ModifiedCraigSneyd",
	ImplicitEuler:      "ImplicitEuler",
	ExplicitEuler:      "ExplicitEuler",
	MethodOfLines:      "MethodOfLines",
	TrBDF2:             "TrBDF2",
	CrankNicolson:      "CrankNicolson",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a scheme name to its Type, ignoring case, dashes and
// underscores ("crank-nicolson", "TR_BDF2").
func ParseType(s string) (Type, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	for t, name := range typeNames {
		if strings.ToLower(name) == key {
			return t, nil
		}
	}
	switch key {
	case "cn":
		return CrankNicolson, nil
	case "mol":
		return MethodOfLines, nil
	}
	return 0, fmt.Errorf("ParseType: %w: %q", ErrUnknownScheme, s)
}

// Desc describes a scheme and its weights. For MethodOfLines Theta is the
// relative tolerance of the adaptive integrator and Mu the initial step
// relative to the time step; for TrBDF2 Theta is the intermediate step
// fraction α and Mu the tolerance of the iterative solver.
type Desc struct {
	Type  Type
	Theta float64
	Mu    float64
}

func NewDesc(t Type, theta, mu float64) Desc {
	return Desc{Type: t, Theta: theta, Mu: mu}
}

func (d Desc) String() string {
	return fmt.Sprintf("%s(theta=%g, mu=%g)", d.Type, d.Theta, d.Mu)
}

func DouglasDesc() Desc            { return Desc{Douglas, 0.5, 0} }
func CrankNicolsonDesc() Desc      { return Desc{CrankNicolson, 0.5, 0} }
func CraigSneydDesc() Desc         { return Desc{CraigSneyd, 0.5, 0.5} }
func ModifiedCraigSneydDesc() Desc { return Desc{ModifiedCraigSneyd, 1.0 / 3, 1.0 / 3} }
func HundsdorferDesc() Desc        { return Desc{Hundsdorfer, 0.5 + math.Sqrt(3)/6, 0.5} }

func ModifiedHundsdorferDesc() Desc { return Desc{Hundsdorfer, 1 - math.Sqrt(2)/2, 0.5} }

func ImplicitEulerDesc() Desc { return Desc{ImplicitEuler, 0, 0} }
func ExplicitEulerDesc() Desc { return Desc{ExplicitEuler, 0, 0} }

// MethodOfLinesDesc uses relative tolerance eps and initial step
// relInitStepSize·dt.
func MethodOfLinesDesc(eps, relInitStepSize float64) Desc {
	return Desc{MethodOfLines, eps, relInitStepSize}
}

func MethodOfLinesDefaultDesc() Desc { return MethodOfLinesDesc(1e-3, 1e-2) }

func TrBDF2Desc() Desc { return Desc{TrBDF2, 2 - math.Sqrt(2), 1e-8} }

// Preset returns the preset descriptor named s. Names are matched like
// ParseType; "modified-hundsdorfer" selects ModifiedHundsdorferDesc.
func Preset(s string) (Desc, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	if key == "modifiedhundsdorfer" {
		return ModifiedHundsdorferDesc(), nil
	}
	t, err := ParseType(s)
	if err != nil {
		return Desc{}, fmt.Errorf("Preset: %w: %q", ErrUnknownScheme, s)
	}
	switch t {
	case Hundsdorfer:
		return HundsdorferDesc(), nil
	case Douglas:
		return DouglasDesc(), nil
	case CraigSneyd:
		return CraigSneydDesc(), nil
	case ModifiedCraigSneyd:
		return ModifiedCraigSneydDesc(), nil
	case ImplicitEuler:
		return ImplicitEulerDesc(), nil
	case ExplicitEuler:
		return ExplicitEulerDesc(), nil
	case MethodOfLines:
		return MethodOfLinesDefaultDesc(), nil
	case TrBDF2:
		return TrBDF2Desc(), nil
	}
	return CrankNicolsonDesc(), nil
}
