package scheme

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decay(_ float64, y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = -v
	}
	return out
}

func TestAdaptiveRKIntegratesBothDirections(t *testing.T) {
	t.Parallel()

	rk := adaptiveRK{tab: dormandPrince(), eps: 1e-8, h1: 0.01, hMin: 1e-12, maxSteps: 10_000}
	y, err := rk.integrate(decay, []float64{1, 2}, 0, 1)
	require.NoError(t, err)
	assert.InDelta(t, math.Exp(-1), y[0], 1e-7)
	assert.InDelta(t, 2*math.Exp(-1), y[1], 1e-7)
	assert.Greater(t, rk.stats.StepCount, 0)
	assert.Greater(t, rk.stats.LastStepSize, 0.0)

	back := adaptiveRK{tab: dormandPrince(), eps: 1e-8, h1: 0.01, hMin: 1e-12, maxSteps: 10_000}
	y, err = back.integrate(decay, []float64{1}, 1, 0)
	require.NoError(t, err)
	assert.InDelta(t, math.E, y[0], 1e-6)
	assert.Less(t, back.stats.LastStepSize, 0.0)
}

func TestAdaptiveRKStepSizeFloor(t *testing.T) {
	t.Parallel()

	// the first step cannot grow past 5·h1, still below the floor
	rk := adaptiveRK{tab: dormandPrince(), eps: 1e-6, h1: 0.01, hMin: 0.5, maxSteps: 10_000}
	_, err := rk.integrate(decay, []float64{1}, 0, 1)
	assert.ErrorIs(t, err, ErrStepSize)

	rk = adaptiveRK{tab: dormandPrince(), eps: 1e-6, h1: 0.01, maxSteps: 3}
	_, err = rk.integrate(decay, []float64{1}, 0, 1)
	assert.ErrorIs(t, err, ErrStepSize)
}
