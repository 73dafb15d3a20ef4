package operator_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/fdm/marketdata"
	"github.com/meenmo/fdm/mesher"
	"github.com/meenmo/fdm/model"
	"github.com/meenmo/fdm/operator"
	"github.com/meenmo/fdm/termstructure"
)

func grid1D(t *testing.T, locs []float64) *mesher.Composite {
	t.Helper()
	m, err := mesher.New1D(locs)
	require.NoError(t, err)
	c, err := mesher.NewComposite(m)
	require.NoError(t, err)
	return c
}

func TestDerivativesExactOnQuadratics(t *testing.T) {
	t.Parallel()

	m := grid1D(t, []float64{0, 0.1, 0.25, 0.5, 0.6, 1.0, 1.3})
	x := m.Locations(0)
	f := make([]float64, len(x))
	for i, xi := range x {
		f[i] = 3*xi*xi - xi + 2
	}

	d1, err := operator.NewFirstDerivative(m, 0)
	require.NoError(t, err)
	d2, err := operator.NewSecondDerivative(m, 0)
	require.NoError(t, err)

	df := d1.Apply(f)
	ddf := d2.Apply(f)
	for i := 1; i < len(x)-1; i++ {
		assert.InDelta(t, 6*x[i]-1, df[i], 1e-12, "first derivative at %g", x[i])
		assert.InDelta(t, 6, ddf[i], 1e-10, "second derivative at %g", x[i])
	}
	// one-sided edges, zero curvature rows
	assert.InDelta(t, (f[1]-f[0])/0.1, df[0], 1e-12)
	assert.Equal(t, 0.0, ddf[0])
	assert.Equal(t, 0.0, ddf[len(x)-1])
}

func TestSolveSplittingInvertsOperator(t *testing.T) {
	t.Parallel()

	u, err := mesher.Uniform(-1, 1, 21)
	require.NoError(t, err)
	m, err := mesher.NewComposite(u)
	require.NoError(t, err)

	d1, err := operator.NewFirstDerivative(m, 0)
	require.NoError(t, err)
	d2, err := operator.NewSecondDerivative(m, 0)
	require.NoError(t, err)
	l := d2.Scale(0.02).Add(d1.Scale(0.01)).AddScalar(-0.05)

	r := m.Locations(0)
	for i := range r {
		r[i] = math.Max(r[i], 0)
	}
	const a = -0.01
	x, err := l.SolveSplitting(r, a, 1)
	require.NoError(t, err)

	lx := l.Apply(x)
	for i := range r {
		assert.InDelta(t, r[i], x[i]+a*lx[i], 1e-12)
	}
}

func TestSolveSplittingReportsSingularSystem(t *testing.T) {
	t.Parallel()

	u, err := mesher.Uniform(0, 1, 5)
	require.NoError(t, err)
	m, err := mesher.NewComposite(u)
	require.NoError(t, err)
	d2, err := operator.NewSecondDerivative(m, 0)
	require.NoError(t, err)

	// the edge rows of ∂xx are zero, so b = 0 leaves them singular
	_, err = d2.SolveSplitting([]float64{1, 1, 1, 1, 1}, 1, 0)
	assert.ErrorIs(t, err, operator.ErrSingular)

	_, err = d2.SolveSplitting([]float64{1, 1}, 1, 1)
	assert.ErrorIs(t, err, operator.ErrDimensionMismatch)
}

func TestTripleBandActsAlongDirectionOfLayout(t *testing.T) {
	t.Parallel()

	x, err := mesher.Uniform(0, 1, 3)
	require.NoError(t, err)
	y, err := mesher.Uniform(0, 2, 4)
	require.NoError(t, err)
	m, err := mesher.NewComposite(x, y)
	require.NoError(t, err)

	d1y, err := operator.NewFirstDerivative(m, 1)
	require.NoError(t, err)

	// f(x, y) = x + 5y has ∂y f = 5 everywhere, edges included
	f := make([]float64, m.Layout().Size())
	for i := range f {
		f[i] = m.Location(i, 0) + 5*m.Location(i, 1)
	}
	for _, v := range d1y.Apply(f) {
		assert.InDelta(t, 5, v, 1e-12)
	}

	_, err = operator.NewFirstDerivative(m, 2)
	assert.ErrorIs(t, err, operator.ErrDimensionMismatch)
}

func TestBlackScholesOperatorOnForward(t *testing.T) {
	t.Parallel()

	u, err := mesher.Uniform(math.Log(50), math.Log(200), 401)
	require.NoError(t, err)
	m, err := mesher.NewComposite(u)
	require.NoError(t, err)

	process, err := model.NewBlackScholesProcess(
		marketdata.NewSimpleQuote(100), marketdata.NewSimpleQuote(0.25),
		termstructure.NewFlatForwardRate(0.05), termstructure.NewFlatForwardRate(0.02))
	require.NoError(t, err)

	op, err := operator.NewBlackScholes(m, process, 0)
	require.NoError(t, err)
	op.SetTime(0, 1)
	assert.Equal(t, 1, op.Size())

	// L S = -q S away from the edges
	s := m.Locations(0)
	for i := range s {
		s[i] = math.Exp(s[i])
	}
	ls := op.Apply(s)
	for i := 1; i < len(s)-1; i++ {
		assert.InEpsilon(t, -0.02*s[i], ls[i], 1e-3)
	}
	for _, v := range op.ApplyMixed(s) {
		assert.Equal(t, 0.0, v)
	}
	for _, v := range op.ApplyDirection(1, s) {
		assert.Equal(t, 0.0, v)
	}
}

func TestHullWhiteOperatorOnConstant(t *testing.T) {
	t.Parallel()

	u, err := mesher.Uniform(-0.1, 0.1, 101)
	require.NoError(t, err)
	m, err := mesher.NewComposite(u)
	require.NoError(t, err)

	hw, err := model.NewHullWhite(termstructure.NewFlatForwardRate(0.03), 0.1, 0.01)
	require.NoError(t, err)
	op, err := operator.NewHullWhite(m, hw, 0)
	require.NoError(t, err)
	op.SetTime(0.5, 0.5)

	ones := make([]float64, 101)
	for i := range ones {
		ones[i] = 1
	}
	// a constant is only discounted at the short rate x + φ
	phi := hw.Phi(0.5)
	for i, v := range op.Apply(ones) {
		assert.InDelta(t, -(m.Location(i, 0) + phi), v, 1e-9)
	}
}

func TestSecondDerivativeBands(t *testing.T) {
	t.Parallel()

	u, err := mesher.Uniform(0, 1, 11)
	require.NoError(t, err)
	m, err := mesher.NewComposite(u)
	require.NoError(t, err)

	d2, err := operator.NewSecondDerivative(m, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, d2.Direction())

	lower, diag, upper := d2.Bands()
	require.Len(t, diag, 11)
	for i := 1; i < 10; i++ {
		assert.InDelta(t, 100, lower[i], 1e-9)
		assert.InDelta(t, -200, diag[i], 1e-9)
		assert.InDelta(t, 100, upper[i], 1e-9)
	}
	assert.Zero(t, diag[0])
	assert.Zero(t, diag[10])

	// bands are copies
	diag[5] = 0
	_, again, _ := d2.Bands()
	assert.InDelta(t, -200, again[5], 1e-9)
}
