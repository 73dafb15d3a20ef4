package interpolation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fdm/interpolation"
)

func TestMonotonicCubicReproducesNodes(t *testing.T) {
	t.Parallel()

	xs := []float64{0, 0.5, 1.2, 2, 3.5}
	ys := []float64{1, 2, 2.5, 4, 4.1}
	s, err := interpolation.NewMonotonicCubic(xs, ys)
	require.NoError(t, err)

	for i, x := range xs {
		assert.InDelta(t, ys[i], s.Value(x), 1e-14)
	}
	// flat outside the node range
	assert.Equal(t, 1.0, s.Value(-1))
	assert.Equal(t, 4.1, s.Value(10))
	assert.Equal(t, 0.0, s.Derivative(10))
}

func TestMonotonicCubicDoesNotOvershootStep(t *testing.T) {
	t.Parallel()

	xs := []float64{0, 1, 2, 3, 4, 5, 6}
	ys := []float64{0, 0, 0, 1, 1, 1, 1}
	s, err := interpolation.NewMonotonicCubic(xs, ys)
	require.NoError(t, err)

	prev := s.Value(0)
	for x := 0.0; x <= 6; x += 0.01 {
		v := s.Value(x)
		assert.GreaterOrEqual(t, v, prev-1e-12, "not monotone at %g", x)
		assert.GreaterOrEqual(t, v, -1e-12)
		assert.LessOrEqual(t, v, 1+1e-12)
		prev = v
	}
	assert.Contains(t, s.Adjusted(), true)
}

func TestMonotonicCubicDerivativesOnSmoothData(t *testing.T) {
	t.Parallel()

	n := 201
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = -2 + 4*float64(i)/float64(n-1)
		ys[i] = math.Exp(xs[i])
	}
	s, err := interpolation.NewMonotonicCubic(xs, ys)
	require.NoError(t, err)

	for _, x := range []float64{-1, -0.33, 0, 0.71, 1.5} {
		assert.InEpsilon(t, math.Exp(x), s.Value(x), 1e-6)
		assert.InEpsilon(t, math.Exp(x), s.Derivative(x), 1e-3)
		assert.InEpsilon(t, math.Exp(x), s.SecondDerivative(x), 2e-2)
	}
}

func TestMonotonicCubicRejectsBadNodes(t *testing.T) {
	t.Parallel()

	_, err := interpolation.NewMonotonicCubic([]float64{1}, []float64{1})
	assert.ErrorIs(t, err, interpolation.ErrTooFewPoints)
	_, err = interpolation.NewMonotonicCubic([]float64{0, 0, 1}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, interpolation.ErrInvalidNodes)
	_, err = interpolation.NewMonotonicCubic([]float64{0, 1}, []float64{1})
	assert.ErrorIs(t, err, interpolation.ErrInvalidNodes)
}
