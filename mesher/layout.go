package mesher

import "fmt"

// Layout maps multi-dimensional node coordinates onto the linear index of a
// grid vector. The first dimension varies fastest.
type Layout struct {
	dim     []int
	spacing []int
	size    int
}

// NewLayout builds the layout of a grid with dim[i] nodes along axis i.
func NewLayout(dim []int) (*Layout, error) {
	if len(dim) == 0 {
		return nil, fmt.Errorf("NewLayout: %w: no dimensions", ErrInvalidSize)
	}
	l := &Layout{
		dim:     append([]int(nil), dim...),
		spacing: make([]int, len(dim)),
		size:    1,
	}
	for i, d := range dim {
		if d < 1 {
			return nil, fmt.Errorf("NewLayout: %w: axis %d has %d nodes", ErrInvalidSize, i, d)
		}
		l.spacing[i] = l.size
		l.size *= d
	}
	return l, nil
}

// Dim returns the number of nodes along each axis.
func (l *Layout) Dim() []int { return append([]int(nil), l.dim...) }

// Dimensions is the number of axes.
func (l *Layout) Dimensions() int { return len(l.dim) }

// Size is the total number of nodes.
func (l *Layout) Size() int { return l.size }

// Spacing returns the linear-index stride of each axis.
func (l *Layout) Spacing() []int { return append([]int(nil), l.spacing...) }

// Coordinates returns the per-axis coordinates of a linear index.
func (l *Layout) Coordinates(index int) []int {
	coords := make([]int, len(l.dim))
	for i := len(l.dim) - 1; i >= 0; i-- {
		coords[i] = index / l.spacing[i]
		index -= coords[i] * l.spacing[i]
	}
	return coords
}

// Coordinate returns the coordinate of index along one axis.
func (l *Layout) Coordinate(index, direction int) int {
	return (index / l.spacing[direction]) % l.dim[direction]
}

// Index is the inverse of Coordinates.
func (l *Layout) Index(coords []int) int {
	idx := 0
	for i, c := range coords {
		idx += c * l.spacing[i]
	}
	return idx
}

// Neighbourhood returns the linear index of the node offset steps away from
// index along direction. Offsets past the grid edge are reflected back inside.
func (l *Layout) Neighbourhood(index, direction, offset int) int {
	c := l.Coordinate(index, direction)
	n := c + offset
	switch {
	case n < 0:
		n = -n
	case n >= l.dim[direction]:
		n = 2*(l.dim[direction]-1) - n
	}
	return index + (n-c)*l.spacing[direction]
}
