// Package stratify splits comparison deltas into tercile bins of auxiliary
// covariates and summarizes each bin.
package stratify

import (
	"fmt"
	"math"
	"sort"

	"github.com/sells-group/bakeoff/internal/robust"
)

// MinFinite is the smallest number of finite covariate values that can be
// binned.
const MinFinite = 6

// Bin is one quantile interval. Bins are right-closed; the first bin also
// includes its lower edge.
type Bin struct {
	Label string
	Lo    float64
	Hi    float64
	first bool
}

// Contains reports whether x falls in the bin.
func (b Bin) Contains(x float64) bool {
	if b.first && x == b.Lo {
		return true
	}
	return x > b.Lo && x <= b.Hi
}

// Terciles cuts the finite values of xs at the 0, 1/3, 2/3 and 1 quantiles.
// Repeated cut points collapse, so fewer than three bins may result. Returns
// nil when there are fewer than MinFinite finite values or fewer than two
// bins.
func Terciles(xs []float64) []Bin {
	return QuantileBins(xs, 3)
}

// QuantileBins cuts the finite values of xs into q population-quantile
// bins labelled Q1..Qk.
func QuantileBins(xs []float64, q int) []Bin {
	fin := robust.Finite(xs)
	if len(fin) < MinFinite || q < 2 {
		return nil
	}
	sort.Float64s(fin)

	edges := make([]float64, 0, q+1)
	for i := 0; i <= q; i++ {
		e := robust.Quantile(fin, float64(i)/float64(q))
		if len(edges) > 0 && e == edges[len(edges)-1] {
			continue
		}
		edges = append(edges, e)
	}
	if len(edges) < 3 {
		return nil
	}

	bins := make([]Bin, len(edges)-1)
	for i := range bins {
		bins[i] = Bin{
			Label: fmt.Sprintf("Q%d", i+1),
			Lo:    edges[i],
			Hi:    edges[i+1],
			first: i == 0,
		}
	}
	return bins
}

// Assign returns the index of the bin containing x, or -1.
func Assign(bins []Bin, x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return -1
	}
	for i, b := range bins {
		if b.Contains(x) {
			return i
		}
	}
	return -1
}
