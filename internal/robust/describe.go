package robust

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Description is the count/mean/std/min/quartiles/max block printed for
// each delta column.
type Description struct {
	Count int
	Mean  float64
	Std   float64 // sample standard deviation (n-1 denominator)
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Describe summarises the non-NaN values of xs.
func Describe(xs []float64) Description {
	vals := NonNaN(xs)
	if len(vals) == 0 {
		nan := math.NaN()
		return Description{Mean: nan, Std: nan, Min: nan, Q25: nan, Q50: nan, Q75: nan, Max: nan}
	}
	sort.Float64s(vals)

	std := math.NaN()
	if len(vals) > 1 {
		std = stat.StdDev(vals, nil)
	}
	return Description{
		Count: len(vals),
		Mean:  stat.Mean(vals, nil),
		Std:   std,
		Min:   vals[0],
		Q25:   Quantile(vals, 0.25),
		Q50:   Quantile(vals, 0.50),
		Q75:   Quantile(vals, 0.75),
		Max:   vals[len(vals)-1],
	}
}
