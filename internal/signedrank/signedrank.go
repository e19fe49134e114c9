// Package signedrank implements the two-sided Wilcoxon signed-rank test of
// a zero median.
//
// Zero differences are discarded before ranking (Wilcoxon's convention).
// Tied magnitudes receive average ranks. Small samples without ties use
// the exact null distribution of the rank sum; otherwise the normal
// approximation is used with a tie-corrected variance and no continuity
// correction.
package signedrank

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Defaults for Options.
const (
	DefaultMinN      = 10
	DefaultExactMaxN = 50
)

// Method names how the p-value was computed.
type Method string

const (
	MethodExact  Method = "exact"
	MethodApprox Method = "approx"
)

// Options configures the test.
type Options struct {
	MinN      int // fewer usable values leaves the result undefined; <= 0 means DefaultMinN
	ExactMaxN int // largest tie-free n that uses the exact distribution; 0 means DefaultExactMaxN, < 0 disables
}

// Result is the outcome of the test. When Defined is false the statistic
// and p-value are NaN.
type Result struct {
	Defined   bool    `json:"defined" yaml:"defined"`
	N         int     `json:"n" yaml:"n"`
	Statistic float64 `json:"statistic" yaml:"statistic"` // min(W+, W−)
	PValue    float64 `json:"p_value" yaml:"p_value"`
	Method    Method  `json:"method,omitempty" yaml:"method,omitempty"`
}

// Test runs the two-sided signed-rank test on xs.
func Test(xs []float64, opts Options) Result {
	if opts.MinN <= 0 {
		opts.MinN = DefaultMinN
	}
	if opts.ExactMaxN == 0 {
		opts.ExactMaxN = DefaultExactMaxN
	}

	d := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x != 0 && !math.IsNaN(x) && !math.IsInf(x, 0) {
			d = append(d, x)
		}
	}
	n := len(d)
	res := Result{N: n, Statistic: math.NaN(), PValue: math.NaN()}
	if n < opts.MinN {
		return res
	}

	ranks, ties := rankAbs(d)
	var wPlus, wMinus float64
	for i, x := range d {
		if x > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}
	t := math.Min(wPlus, wMinus)
	res.Defined = true
	res.Statistic = t

	if len(ties) == 0 && n <= opts.ExactMaxN {
		res.Method = MethodExact
		res.PValue = exactPValue(n, t)
		return res
	}

	res.Method = MethodApprox
	nf := float64(n)
	mean := nf * (nf + 1) / 4
	variance := nf * (nf + 1) * (2*nf + 1) / 24
	for _, c := range ties {
		tc := float64(c)
		variance -= (tc*tc*tc - tc) / 48
	}
	if variance <= 0 {
		res.PValue = 1
		return res
	}
	z := (t - mean) / math.Sqrt(variance)
	res.PValue = math.Min(1, 2*distuv.UnitNormal.Survival(math.Abs(z)))
	return res
}

// rankAbs ranks |d| ascending with average ranks for ties. It also returns
// the size of every tie group larger than one.
func rankAbs(d []float64) (ranks []float64, ties []int) {
	n := len(d)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(d[idx[a]]) < math.Abs(d[idx[b]])
	})

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i + 1
		for j < n && math.Abs(d[idx[j]]) == math.Abs(d[idx[i]]) {
			j++
		}
		// Positions i..j-1 share ranks i+1..j.
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		if j-i > 1 {
			ties = append(ties, j-i)
		}
		i = j
	}
	return ranks, ties
}

// exactPValue returns 2·P(W ≤ t) under the null for sample size n, capped
// at 1. The null distribution counts the subsets of {1..n} by their sum.
func exactPValue(n int, t float64) float64 {
	maxSum := n * (n + 1) / 2
	counts := make([]float64, maxSum+1)
	counts[0] = 1
	for r := 1; r <= n; r++ {
		for s := maxSum; s >= r; s-- {
			counts[s] += counts[s-r]
		}
	}

	limit := int(math.Floor(t))
	var cum float64
	for s := 0; s <= limit && s <= maxSum; s++ {
		cum += counts[s]
	}
	p := 2 * cum / math.Ldexp(1, n)
	return math.Min(1, p)
}
