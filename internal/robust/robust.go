// Package robust computes quantiles and robust location/scale summaries.
//
// Quantiles use linear interpolation between order statistics (Hyndman &
// Fan type 7), the convention of numpy.percentile and pandas.quantile.
package robust

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// MADScale makes the median absolute deviation a consistent estimator of
// the standard deviation under normality.
const MADScale = 1.4826

// Finite returns the finite values of xs, in order.
func Finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// NonNaN returns the values of xs that are not NaN. Infinities are kept.
func NonNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Quantile returns the p-quantile (0 <= p <= 1) of an ascending slice.
// Returns NaN for an empty slice.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 || math.IsNaN(p) {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	h := p * float64(n-1)
	lo := int(math.Floor(h))
	w := h - float64(lo)
	if w == 0 || lo+1 >= n {
		return sorted[lo]
	}
	return sorted[lo] + w*(sorted[lo+1]-sorted[lo])
}

// Percentiles returns the requested percentiles (0..100) of the non-NaN
// values of xs.
func Percentiles(xs []float64, ps ...float64) []float64 {
	sorted := NonNaN(xs)
	sort.Float64s(sorted)
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = Quantile(sorted, p/100)
	}
	return out
}

// Median returns the median of xs, or NaN for an empty slice.
func Median(xs []float64) float64 {
	m, err := stats.Median(xs)
	if err != nil {
		return math.NaN()
	}
	return m
}

// MAD returns the scaled median absolute deviation of xs.
func MAD(xs []float64) float64 {
	mad, err := stats.MedianAbsoluteDeviation(xs)
	if err != nil {
		return math.NaN()
	}
	return MADScale * mad
}

// Summary is the robust location/scale block reported for a parameter.
type Summary struct {
	N      int     `json:"n" yaml:"n"`
	Median float64 `json:"median" yaml:"median"`
	MAD    float64 `json:"mad" yaml:"mad"`
	P16    float64 `json:"p16" yaml:"p16"`
	P84    float64 `json:"p84" yaml:"p84"`
}

// Summarize computes Summary over the finite values of xs. With no finite
// values every statistic is NaN and N is 0.
func Summarize(xs []float64) Summary {
	fin := Finite(xs)
	if len(fin) == 0 {
		nan := math.NaN()
		return Summary{N: 0, Median: nan, MAD: nan, P16: nan, P84: nan}
	}
	p := Percentiles(fin, 16, 84)
	return Summary{
		N:      len(fin),
		Median: Median(fin),
		MAD:    MAD(fin),
		P16:    p[0],
		P84:    p[1],
	}
}

// Quartiles holds the 25th, 50th and 75th percentiles.
type Quartiles struct {
	Q1     float64 `json:"q1" yaml:"q1"`
	Median float64 `json:"median" yaml:"median"`
	Q3     float64 `json:"q3" yaml:"q3"`
}

// QuartilesOf computes quartiles over the non-NaN values of xs.
func QuartilesOf(xs []float64) Quartiles {
	p := Percentiles(xs, 25, 50, 75)
	return Quartiles{Q1: p[0], Median: p[1], Q3: p[2]}
}
