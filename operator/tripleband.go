package operator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/meenmo/fdm/mesher"
)

// TripleBand is an operator coupling every node with its two neighbours
// along one direction. Row i reads
//
//	(L r)_i = lower_i r_{i-1} + diag_i r_i + upper_i r_{i+1}
//
// where the neighbours are taken along the direction. The lower entry of the
// first node and the upper entry of the last node of each line are ignored.
type TripleBand struct {
	layout    *mesher.Layout
	direction int
	lower     []float64
	diag      []float64
	upper     []float64
}

func newTripleBand(layout *mesher.Layout, direction int) (*TripleBand, error) {
	if direction < 0 || direction >= layout.Dimensions() {
		return nil, fmt.Errorf("newTripleBand: %w: direction %d of %d", ErrDimensionMismatch, direction, layout.Dimensions())
	}
	n := layout.Size()
	return &TripleBand{
		layout:    layout,
		direction: direction,
		lower:     make([]float64, n),
		diag:      make([]float64, n),
		upper:     make([]float64, n),
	}, nil
}

func (t *TripleBand) clone() *TripleBand {
	return &TripleBand{
		layout:    t.layout,
		direction: t.direction,
		lower:     append([]float64(nil), t.lower...),
		diag:      append([]float64(nil), t.diag...),
		upper:     append([]float64(nil), t.upper...),
	}
}

// Direction is the axis the band couples along.
func (t *TripleBand) Direction() int { return t.direction }

// Bands returns copies of the lower, diagonal and upper coefficients.
func (t *TripleBand) Bands() (lower, diag, upper []float64) {
	c := t.clone()
	return c.lower, c.diag, c.upper
}

// Scale returns s·L.
func (t *TripleBand) Scale(s float64) *TripleBand {
	out := t.clone()
	for i := range out.diag {
		out.lower[i] *= s
		out.diag[i] *= s
		out.upper[i] *= s
	}
	return out
}

// MultRows returns diag(c)·L, scaling row i by c[i].
func (t *TripleBand) MultRows(c []float64) *TripleBand {
	if len(c) != len(t.diag) {
		panic(fmt.Sprintf("operator: MultRows: %d coefficients for %d rows", len(c), len(t.diag)))
	}
	out := t.clone()
	for i, s := range c {
		out.lower[i] *= s
		out.diag[i] *= s
		out.upper[i] *= s
	}
	return out
}

// Add returns L + o. Both bands must run along the same direction of the same layout.
func (t *TripleBand) Add(o *TripleBand) *TripleBand {
	if o.layout != t.layout || o.direction != t.direction {
		panic("operator: Add: bands on different axes")
	}
	out := t.clone()
	for i := range out.diag {
		out.lower[i] += o.lower[i]
		out.diag[i] += o.diag[i]
		out.upper[i] += o.upper[i]
	}
	return out
}

// AddToDiag returns L + diag(c).
func (t *TripleBand) AddToDiag(c []float64) *TripleBand {
	if len(c) != len(t.diag) {
		panic(fmt.Sprintf("operator: AddToDiag: %d coefficients for %d rows", len(c), len(t.diag)))
	}
	out := t.clone()
	for i, s := range c {
		out.diag[i] += s
	}
	return out
}

// AddScalar returns L + s·1.
func (t *TripleBand) AddScalar(s float64) *TripleBand {
	out := t.clone()
	for i := range out.diag {
		out.diag[i] += s
	}
	return out
}

// forEachLine calls fn with the linear index of the first node of every
// grid line along the band's direction.
func (t *TripleBand) forEachLine(fn func(start int) error) error {
	for i := 0; i < t.layout.Size(); i++ {
		if t.layout.Coordinate(i, t.direction) != 0 {
			continue
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

// line assembles b + a·L restricted to the line starting at start.
func (t *TripleBand) line(start int, a, b float64) *mat.Tridiag {
	n := t.layout.Dim()[t.direction]
	stride := t.layout.Spacing()[t.direction]
	dl := make([]float64, n-1)
	d := make([]float64, n)
	du := make([]float64, n-1)
	for k := 0; k < n; k++ {
		idx := start + k*stride
		d[k] = b + a*t.diag[idx]
		if k > 0 {
			dl[k-1] = a * t.lower[idx]
		}
		if k < n-1 {
			du[k] = a * t.upper[idx]
		}
	}
	return mat.NewTridiag(n, dl, d, du)
}

func (t *TripleBand) gather(r []float64, start int) *mat.VecDense {
	n := t.layout.Dim()[t.direction]
	stride := t.layout.Spacing()[t.direction]
	v := make([]float64, n)
	for k := range v {
		v[k] = r[start+k*stride]
	}
	return mat.NewVecDense(n, v)
}

func (t *TripleBand) scatter(dst []float64, start int, v *mat.VecDense) {
	stride := t.layout.Spacing()[t.direction]
	for k, x := range v.RawVector().Data {
		dst[start+k*stride] = x
	}
}

// Apply returns L r.
func (t *TripleBand) Apply(r []float64) []float64 {
	if len(r) != len(t.diag) {
		panic(fmt.Sprintf("operator: Apply: vector of %d for %d nodes", len(r), len(t.diag)))
	}
	out := make([]float64, len(r))
	_ = t.forEachLine(func(start int) error {
		var res mat.VecDense
		t.line(start, 1, 0).MulVecTo(&res, false, t.gather(r, start))
		t.scatter(out, start, &res)
		return nil
	})
	return out
}

// SolveSplitting solves (b + a·L) x = r line by line.
func (t *TripleBand) SolveSplitting(r []float64, a, b float64) ([]float64, error) {
	if len(r) != len(t.diag) {
		return nil, fmt.Errorf("SolveSplitting: %w: vector of %d for %d nodes", ErrDimensionMismatch, len(r), len(t.diag))
	}
	out := make([]float64, len(r))
	err := t.forEachLine(func(start int) error {
		var x mat.VecDense
		if err := t.line(start, a, b).SolveVecTo(&x, false, t.gather(r, start)); err != nil {
			return fmt.Errorf("SolveSplitting: %w: %v", ErrSingular, err)
		}
		t.scatter(out, start, &x)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
