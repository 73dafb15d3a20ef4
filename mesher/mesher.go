// Package mesher discretises the state space of the finite-difference
// engines. A Mesher exposes the grid layout and the coordinate of every node
// along every axis; the one-dimensional building blocks (Uniform,
// Concentrating, BlackScholes, OrnsteinUhlenbeck) are combined by Composite.
package mesher

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidSize is returned for grids with too few nodes.
	ErrInvalidSize = errors.New("mesher: invalid grid size")
	// ErrNotIncreasing is returned when node locations are not strictly increasing.
	ErrNotIncreasing = errors.New("mesher: locations not strictly increasing")
	// ErrDimensionMismatch is returned when an index or axis does not match the layout.
	ErrDimensionMismatch = errors.New("mesher: dimension mismatch")
	// ErrInvalidRange is returned when a mesher's bounds are unusable.
	ErrInvalidRange = errors.New("mesher: invalid range")
)

// Mesher gives the spatial coordinates of the nodes of a grid.
type Mesher interface {
	Layout() *Layout
	// Location is the coordinate of node index along direction.
	Location(index, direction int) float64
	// Locations returns the coordinate along direction of every node, in
	// linear-index order.
	Locations(direction int) []float64
	// Dplus is the distance to the next node along direction (NaN at the upper edge).
	Dplus(index, direction int) float64
	// Dminus is the distance to the previous node along direction (NaN at the lower edge).
	Dminus(index, direction int) float64
}

// Fdm1D is a one-dimensional set of strictly increasing locations.
type Fdm1D struct {
	locations []float64
	dplus     []float64
	dminus    []float64
}

// New1D builds a one-dimensional mesher from explicit locations.
func New1D(locations []float64) (*Fdm1D, error) {
	n := len(locations)
	if n < 2 {
		return nil, fmt.Errorf("New1D: %w: %d nodes", ErrInvalidSize, n)
	}
	m := &Fdm1D{
		locations: append([]float64(nil), locations...),
		dplus:     make([]float64, n),
		dminus:    make([]float64, n),
	}
	for i := 0; i < n-1; i++ {
		h := locations[i+1] - locations[i]
		if !(h > 0) {
			return nil, fmt.Errorf("New1D: %w: x[%d]=%g, x[%d]=%g", ErrNotIncreasing, i, locations[i], i+1, locations[i+1])
		}
		m.dplus[i] = h
		m.dminus[i+1] = h
	}
	m.dplus[n-1] = math.NaN()
	m.dminus[0] = math.NaN()
	return m, nil
}

// Size is the number of nodes.
func (m *Fdm1D) Size() int { return len(m.locations) }

// Locations returns a copy of the node locations.
func (m *Fdm1D) Locations() []float64 { return append([]float64(nil), m.locations...) }

func (m *Fdm1D) Location(i int) float64 { return m.locations[i] }
func (m *Fdm1D) Dplus(i int) float64    { return m.dplus[i] }
func (m *Fdm1D) Dminus(i int) float64   { return m.dminus[i] }

// Uniform places size equidistant nodes on [start, end].
func Uniform(start, end float64, size int) (*Fdm1D, error) {
	if size < 2 {
		return nil, fmt.Errorf("Uniform: %w: %d nodes", ErrInvalidSize, size)
	}
	if !(end > start) {
		return nil, fmt.Errorf("Uniform: %w: [%g, %g]", ErrInvalidRange, start, end)
	}
	locs := make([]float64, size)
	dx := (end - start) / float64(size-1)
	for i := range locs {
		locs[i] = start + float64(i)*dx
	}
	locs[size-1] = end
	return New1D(locs)
}

// Concentrating clusters size nodes on [start, end] around centre with a
// sinh stretching. density is relative to the interval length; smaller values
// concentrate more strongly.
func Concentrating(start, end float64, size int, centre, density float64) (*Fdm1D, error) {
	if size < 2 {
		return nil, fmt.Errorf("Concentrating: %w: %d nodes", ErrInvalidSize, size)
	}
	if !(end > start) || !(density > 0) {
		return nil, fmt.Errorf("Concentrating: %w: [%g, %g] density %g", ErrInvalidRange, start, end, density)
	}
	d := density * (end - start)
	c1 := math.Asinh((start - centre) / d)
	c2 := math.Asinh((end - centre) / d)
	dx := 1.0 / float64(size-1)

	locs := make([]float64, size)
	for i := range locs {
		u := float64(i) * dx
		locs[i] = centre + d*math.Sinh(c1*(1-u)+c2*u)
	}
	locs[0], locs[size-1] = start, end
	return New1D(locs)
}

// Composite combines one-dimensional meshers into a tensor-product grid.
type Composite struct {
	layout  *Layout
	meshers []*Fdm1D
}

// NewComposite builds the grid spanned by meshers, the first one varying fastest.
func NewComposite(meshers ...*Fdm1D) (*Composite, error) {
	if len(meshers) == 0 {
		return nil, fmt.Errorf("NewComposite: %w: no meshers", ErrInvalidSize)
	}
	dims := make([]int, len(meshers))
	for i, m := range meshers {
		if m == nil {
			return nil, fmt.Errorf("NewComposite: %w: nil mesher on axis %d", ErrDimensionMismatch, i)
		}
		dims[i] = m.Size()
	}
	layout, err := NewLayout(dims)
	if err != nil {
		return nil, err
	}
	return &Composite{layout: layout, meshers: meshers}, nil
}

func (c *Composite) Layout() *Layout { return c.layout }

func (c *Composite) Location(index, direction int) float64 {
	return c.meshers[direction].Location(c.layout.Coordinate(index, direction))
}

func (c *Composite) Locations(direction int) []float64 {
	out := make([]float64, c.layout.Size())
	for i := range out {
		out[i] = c.Location(i, direction)
	}
	return out
}

func (c *Composite) Dplus(index, direction int) float64 {
	return c.meshers[direction].Dplus(c.layout.Coordinate(index, direction))
}

func (c *Composite) Dminus(index, direction int) float64 {
	return c.meshers[direction].Dminus(c.layout.Coordinate(index, direction))
}

// Axis returns the one-dimensional mesher along direction.
func (c *Composite) Axis(direction int) *Fdm1D { return c.meshers[direction] }
