// Package config holds the numerical knobs of the pricing engines and the
// command line tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/meenmo/fdm/scheme"
)

// ErrInvalidConfig is returned by Validate and Load.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds grid and scheme parameters shared by the engines.
type Config struct {
	// Scheme names the time-stepping preset, see scheme.Preset.
	Scheme string

	// TimeSteps is the number of regular rollback steps after damping.
	TimeSteps int

	// XGrid is the number of nodes of the spatial grid.
	XGrid int

	// DampingSteps is the number of implicit Euler steps taken first.
	DampingSteps int

	// MesherEps is the tail probability cut off each side of the grid.
	MesherEps float64

	// MesherScaleFactor widens the quantile-based grid bounds.
	MesherScaleFactor float64

	// ConcentrationDensity clusters nodes around the strike; 0 gives a
	// uniform grid.
	ConcentrationDensity float64

	// MethodOfLinesEps and MethodOfLinesInitStep parameterise the adaptive
	// integrator when Scheme selects the method of lines.
	MethodOfLinesEps      float64
	MethodOfLinesInitStep float64

	// LogLevel is one of debug, info, warn, error, off.
	LogLevel string
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Scheme:                "douglas",
	TimeSteps:             100,
	XGrid:                 100,
	DampingSteps:          0,
	MesherEps:             1e-4,
	MesherScaleFactor:     1.5,
	ConcentrationDensity:  0.1,
	MethodOfLinesEps:      1e-3,
	MethodOfLinesInitStep: 1e-2,
	LogLevel:              "info",
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}

// Validate checks the ranges of every field.
func (c Config) Validate() error {
	switch {
	case c.TimeSteps <= 0:
		return fmt.Errorf("%w: TimeSteps must be positive, got %d", ErrInvalidConfig, c.TimeSteps)
	case c.XGrid < 3:
		return fmt.Errorf("%w: XGrid must be at least 3, got %d", ErrInvalidConfig, c.XGrid)
	case c.DampingSteps < 0:
		return fmt.Errorf("%w: DampingSteps must not be negative, got %d", ErrInvalidConfig, c.DampingSteps)
	case !(c.MesherEps > 0 && c.MesherEps < 0.5):
		return fmt.Errorf("%w: MesherEps must lie in (0, 0.5), got %g", ErrInvalidConfig, c.MesherEps)
	case !(c.MesherScaleFactor > 0):
		return fmt.Errorf("%w: MesherScaleFactor must be positive, got %g", ErrInvalidConfig, c.MesherScaleFactor)
	case c.ConcentrationDensity < 0:
		return fmt.Errorf("%w: ConcentrationDensity must not be negative, got %g", ErrInvalidConfig, c.ConcentrationDensity)
	case !(c.MethodOfLinesEps > 0) || !(c.MethodOfLinesInitStep > 0):
		return fmt.Errorf("%w: method of lines parameters must be positive", ErrInvalidConfig)
	}
	if _, err := scheme.Preset(c.Scheme); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SchemeDesc converts the configured scheme name to a descriptor. The
// method of lines picks up MethodOfLinesEps and MethodOfLinesInitStep.
func (c Config) SchemeDesc() (scheme.Desc, error) {
	d, err := scheme.Preset(c.Scheme)
	if err != nil {
		return scheme.Desc{}, fmt.Errorf("SchemeDesc: %w", err)
	}
	if d.Type == scheme.MethodOfLines {
		d = scheme.MethodOfLinesDesc(c.MethodOfLinesEps, c.MethodOfLinesInitStep)
	}
	return d, nil
}

// Load starts from DefaultConfig, reads the given env files (".env" when
// none is named; missing files are ignored) and applies the FDM_*
// environment variables:
//
//	FDM_SCHEME, FDM_TIME_STEPS, FDM_X_GRID, FDM_DAMPING_STEPS,
//	FDM_MESHER_EPS, FDM_MESHER_SCALE_FACTOR, FDM_CONCENTRATION_DENSITY,
//	FDM_MOL_EPS, FDM_MOL_INIT_STEP, FDM_LOG_LEVEL
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)

	c := DefaultConfig
	var errs []error
	c.Scheme = getEnv("FDM_SCHEME", c.Scheme)
	c.LogLevel = getEnv("FDM_LOG_LEVEL", c.LogLevel)
	c.TimeSteps = getEnvAsInt("FDM_TIME_STEPS", c.TimeSteps, &errs)
	c.XGrid = getEnvAsInt("FDM_X_GRID", c.XGrid, &errs)
	c.DampingSteps = getEnvAsInt("FDM_DAMPING_STEPS", c.DampingSteps, &errs)
	c.MesherEps = getEnvAsFloat("FDM_MESHER_EPS", c.MesherEps, &errs)
	c.MesherScaleFactor = getEnvAsFloat("FDM_MESHER_SCALE_FACTOR", c.MesherScaleFactor, &errs)
	c.ConcentrationDensity = getEnvAsFloat("FDM_CONCENTRATION_DENSITY", c.ConcentrationDensity, &errs)
	c.MethodOfLinesEps = getEnvAsFloat("FDM_MOL_EPS", c.MethodOfLinesEps, &errs)
	c.MethodOfLinesInitStep = getEnvAsFloat("FDM_MOL_INIT_STEP", c.MethodOfLinesInitStep, &errs)
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("Load: %w", errors.Join(errs...))
	}

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("Load: %w", err)
	}
	return c, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int, errs *[]error) int {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, value))
		return defaultValue
	}
	return v
}

func getEnvAsFloat(key string, defaultValue float64, errs *[]error) float64 {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, value))
		return defaultValue
	}
	return v
}
