package scheme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiCGStabSolvesNonSymmetricSystem(t *testing.T) {
	t.Parallel()

	// A = [[4, 1, 0], [2, 5, 1], [0, 1, 3]]
	apply := func(x []float64) []float64 {
		return []float64{
			4*x[0] + x[1],
			2*x[0] + 5*x[1] + x[2],
			x[1] + 3*x[2],
		}
	}
	jacobi := func(x []float64) ([]float64, error) {
		return []float64{x[0] / 4, x[1] / 5, x[2] / 3}, nil
	}
	want := []float64{1, -2, 3}
	b := apply(want)

	s := biCGStab{apply: apply, precondition: jacobi, maxIter: 50, relTol: 1e-12}
	x, iters, err := s.solve(b, make([]float64, 3))
	require.NoError(t, err)
	assert.LessOrEqual(t, iters, 50)
	for i := range want {
		assert.InDelta(t, want[i], x[i], 1e-9)
	}

	zero, _, err := s.solve(make([]float64, 3), []float64{1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, zero)

	s.maxIter = 0
	_, _, err = s.solve(b, make([]float64, 3))
	assert.ErrorIs(t, err, ErrNoConvergence)
}
