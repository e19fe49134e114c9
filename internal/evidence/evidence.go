// Package evidence bins ΔBIC values into Kass–Raftery strength-of-evidence
// categories.
package evidence

import (
	"fmt"
	"math"
	"sort"

	"github.com/sells-group/bakeoff/internal/model"
)

// Thresholds are the ΔBIC cut points between adjacent bins.
var Thresholds = [6]float64{-10, -6, -2, 2, 6, 10}

// NumBins is the number of evidence categories.
const NumBins = len(Thresholds) + 1

// Scale labels the seven bins for a pair of models. Negative ΔBIC
// (right − left) favours the right model.
type Scale struct {
	Labels [NumBins]string
}

// NewScale builds the labels for the given models.
func NewScale(m model.Models) Scale {
	l, r := m.Left, m.Right
	return Scale{Labels: [NumBins]string{
		fmt.Sprintf("%s≫%s (≥10)", r, l),
		fmt.Sprintf("%s>%s (6–10)", r, l),
		fmt.Sprintf("%s>%s (2–6)", r, l),
		"~tie (±2)",
		fmt.Sprintf("%s>%s (2–6)", l, r),
		fmt.Sprintf("%s>%s (6–10)", l, r),
		fmt.Sprintf("%s≫%s (≥10)", l, r),
	}}
}

// DefaultScale is the EGR versus LCDM labelling.
var DefaultScale = NewScale(model.DefaultModels)

// Bin returns the bin index of x. Intervals are closed on the right:
// (−∞,−10], (−10,−6], (−6,−2], (−2,2], (2,6], (6,10], (10,∞).
// Non-finite values have no bin.
func Bin(x float64) (int, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	// First threshold >= x.
	return sort.SearchFloat64s(Thresholds[:], x), true
}

// Count is the tally for one bin.
type Count struct {
	Label    string  `json:"label" yaml:"label"`
	Count    int     `json:"count" yaml:"count"`
	Fraction float64 `json:"fraction" yaml:"fraction"` // of Table.N, unbinned included
}

// Table is the evidence tally of a ΔBIC column.
type Table struct {
	Bins []Count `json:"bins" yaml:"bins"`
	N    int     `json:"n" yaml:"n"`
	NaN  int     `json:"nan" yaml:"nan"`
	Inf  int     `json:"inf" yaml:"inf"`
}

// Unbinned returns the number of values that fell in no bin.
func (t Table) Unbinned() int { return t.NaN + t.Inf }

// Binned returns the number of values that fell in some bin.
func (t Table) Binned() int { return t.N - t.Unbinned() }

// Tabulate bins values and returns counts in canonical bin order.
func (s Scale) Tabulate(values []float64) Table {
	var counts [NumBins]int
	t := Table{N: len(values)}
	for _, v := range values {
		switch {
		case math.IsNaN(v):
			t.NaN++
		case math.IsInf(v, 0):
			t.Inf++
		default:
			i, _ := Bin(v)
			counts[i]++
		}
	}

	t.Bins = make([]Count, NumBins)
	for i, label := range s.Labels {
		frac := math.NaN()
		if t.N > 0 {
			frac = float64(counts[i]) / float64(t.N)
		}
		t.Bins[i] = Count{Label: label, Count: counts[i], Fraction: frac}
	}
	return t
}
