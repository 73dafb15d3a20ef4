package operator

import (
	"github.com/meenmo/fdm/mesher"
)

// NewFirstDerivative is the non-uniform central first derivative along
// direction, one-sided on the grid edges.
func NewFirstDerivative(m mesher.Mesher, direction int) (*TripleBand, error) {
	layout := m.Layout()
	t, err := newTripleBand(layout, direction)
	if err != nil {
		return nil, err
	}
	last := layout.Dim()[direction] - 1
	for i := 0; i < layout.Size(); i++ {
		hm := m.Dminus(i, direction)
		hp := m.Dplus(i, direction)
		switch layout.Coordinate(i, direction) {
		case 0:
			t.diag[i] = -1 / hp
			t.upper[i] = 1 / hp
		case last:
			t.lower[i] = -1 / hm
			t.diag[i] = 1 / hm
		default:
			t.lower[i] = -hp / (hm * (hm + hp))
			t.diag[i] = (hp - hm) / (hm * hp)
			t.upper[i] = hm / (hp * (hm + hp))
		}
	}
	return t, nil
}

// NewSecondDerivative is the non-uniform central second derivative along
// direction. Rows on the grid edges are zero.
func NewSecondDerivative(m mesher.Mesher, direction int) (*TripleBand, error) {
	layout := m.Layout()
	t, err := newTripleBand(layout, direction)
	if err != nil {
		return nil, err
	}
	last := layout.Dim()[direction] - 1
	for i := 0; i < layout.Size(); i++ {
		c := layout.Coordinate(i, direction)
		if c == 0 || c == last {
			continue
		}
		hm := m.Dminus(i, direction)
		hp := m.Dplus(i, direction)
		t.lower[i] = 2 / (hm * (hm + hp))
		t.diag[i] = -2 / (hm * hp)
		t.upper[i] = 2 / (hp * (hm + hp))
	}
	return t, nil
}
