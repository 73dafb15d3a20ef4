package boundary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fdm/boundary"
	"github.com/meenmo/fdm/mesher"
)

func TestDirichletPinsEdge(t *testing.T) {
	t.Parallel()

	x, err := mesher.Uniform(0, 1, 3)
	require.NoError(t, err)
	y, err := mesher.Uniform(0, 1, 2)
	require.NoError(t, err)
	m, err := mesher.NewComposite(x, y)
	require.NoError(t, err)

	upper, err := boundary.NewDirichlet(m, 0, boundary.Upper, 7)
	require.NoError(t, err)
	lower, err := boundary.NewTimeDependentDirichlet(m, 0, boundary.Lower, func(t float64) float64 { return 10 * t })
	require.NoError(t, err)

	set := boundary.Set{upper, lower}
	set.SetTime(0.5)

	a := make([]float64, 6)
	set.ApplyAfterApplying(a)
	assert.Equal(t, []float64{5, 0, 7, 5, 0, 7}, a)

	b := []float64{1, 1, 1, 1, 1, 1}
	set.ApplyBeforeSolving(nil, b)
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, b)
	set.ApplyAfterSolving(b)
	assert.Equal(t, []float64{5, 1, 7, 5, 1, 7}, b)

	_, err = boundary.NewDirichlet(m, 3, boundary.Lower, 0)
	assert.ErrorIs(t, err, mesher.ErrDimensionMismatch)
}

func TestEmptySetIsNoOp(t *testing.T) {
	t.Parallel()

	var set boundary.Set
	a := []float64{1, 2, 3}
	set.SetTime(1)
	set.ApplyAfterApplying(a)
	set.ApplyAfterSolving(a)
	assert.Equal(t, []float64{1, 2, 3}, a)
}
