package stepcondition

import (
	"math"
	"sort"

	"github.com/meenmo/fdm/interpolation"
	"github.com/meenmo/fdm/mesher"
)

// Dividend applies cash dividends on a log-spot direction. Across a payment
// of D the option value satisfies V(S, t⁻) = V(S - D, t⁺); going backward,
// the grid is replaced by the spline of the post-dividend values taken at
// S - D. Spots falling below the mesh are floored at the lowest node.
//
// Unlike the exercise conditions, Dividend shifts the grid on every call at
// a payment time; the rollback driver calls it once per stopping time.
type Dividend struct {
	mesher    mesher.Mesher
	direction int
	times     []float64
	amounts   []float64
}

// NewDividend pays amounts[i] at times[i] along direction of m. Amounts
// paid at the same time are added into one payment.
func NewDividend(times, amounts []float64, m mesher.Mesher, direction int) *Dividend {
	idx := make([]int, len(times))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return times[idx[i]] < times[idx[j]] })
	d := &Dividend{mesher: m, direction: direction}
	for _, i := range idx {
		if n := len(d.times); n > 0 && d.times[n-1] == times[i] {
			d.amounts[n-1] += amounts[i]
			continue
		}
		d.times = append(d.times, times[i])
		d.amounts = append(d.amounts, amounts[i])
	}
	return d
}

// Times returns the sorted payment times.
func (d *Dividend) Times() []float64 { return append([]float64(nil), d.times...) }

func (d *Dividend) ApplyTo(a []float64, t float64) {
	i := sort.SearchFloat64s(d.times, t)
	if i == len(d.times) || d.times[i] != t {
		return
	}
	amount := d.amounts[i]
	if amount == 0 {
		return
	}

	layout := d.mesher.Layout()
	n := layout.Dim()[d.direction]
	stride := layout.Spacing()[d.direction]
	xs := make([]float64, n)
	ys := make([]float64, n)
	for start := 0; start < layout.Size(); start++ {
		if layout.Coordinate(start, d.direction) != 0 {
			continue
		}
		for k := 0; k < n; k++ {
			xs[k] = d.mesher.Location(start+k*stride, d.direction)
			ys[k] = a[start+k*stride]
		}
		spline, err := interpolation.NewMonotonicCubic(xs, ys)
		if err != nil {
			// mesher locations are strictly increasing
			panic(err)
		}
		floor := math.Exp(xs[0])
		for k := 0; k < n; k++ {
			s := math.Max(math.Exp(xs[k])-amount, floor)
			a[start+k*stride] = spline.Value(math.Log(s))
		}
	}
}
