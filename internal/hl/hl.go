// Package hl implements the Hodges–Lehmann location estimator with a
// bootstrap percentile confidence interval.
package hl

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/sells-group/bakeoff/internal/robust"
)

// Defaults used by the bakeoff scripts.
const (
	DefaultResamples  = 1500
	DefaultConfidence = 0.95
	DefaultSeed       = 42
)

// Options configures the bootstrap.
type Options struct {
	Resamples  int     // B; <= 0 means DefaultResamples
	Confidence float64 // in (0,1); <= 0 means DefaultConfidence
	Seed       uint64
}

// Result is the estimate and its interval.
type Result struct {
	Estimate float64 `json:"estimate" yaml:"estimate"`
	Lo       float64 `json:"lo" yaml:"lo"`
	Hi       float64 `json:"hi" yaml:"hi"`
	N        int     `json:"n" yaml:"n"` // sample size after dropping non-finite and zero deltas
}

// Clean drops non-finite and exactly-zero values.
func Clean(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x != 0 && !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

// Estimate returns the Hodges–Lehmann estimate of xs: the median of the
// n² Walsh averages (x_i + x_j)/2 over all ordered pairs. Non-finite and
// zero values are dropped first; an empty sample yields NaN.
func Estimate(xs []float64) float64 {
	x := Clean(xs)
	return walshMedian(x, make([]float64, 0, len(x)*len(x)))
}

// walshMedian computes the estimate of an already-clean sample, reusing buf.
func walshMedian(x, buf []float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	buf = buf[:0]
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			buf = append(buf, (x[i]+x[j])/2)
		}
	}
	sort.Float64s(buf)
	m := len(buf)
	if m%2 == 1 {
		return buf[m/2]
	}
	return (buf[m/2-1] + buf[m/2]) / 2
}

// Bootstrap computes the estimate and a percentile interval from
// opts.Resamples resamples drawn with replacement. The same seed and input
// order reproduce the same interval.
func Bootstrap(xs []float64, opts Options) Result {
	if opts.Resamples <= 0 {
		opts.Resamples = DefaultResamples
	}
	if opts.Confidence <= 0 || opts.Confidence >= 1 {
		opts.Confidence = DefaultConfidence
	}

	x := Clean(xs)
	n := len(x)
	res := Result{N: n, Lo: math.NaN(), Hi: math.NaN()}
	buf := make([]float64, 0, n*n)
	res.Estimate = walshMedian(x, buf)
	if n == 0 {
		return res
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	sample := make([]float64, n)
	boots := make([]float64, opts.Resamples)
	for b := range boots {
		for i := range sample {
			sample[i] = x[rng.IntN(n)]
		}
		boots[b] = walshMedian(sample, buf)
	}

	alpha := 1 - opts.Confidence
	sort.Float64s(boots)
	res.Lo = robust.Quantile(boots, alpha/2)
	res.Hi = robust.Quantile(boots, 1-alpha/2)
	return res
}
