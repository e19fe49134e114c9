package hl

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate_Symmetric(t *testing.T) {
	// Zero is dropped before estimation; the rest stays symmetric around 0.
	assert.InDelta(t, 0.0, Estimate([]float64{-2, -1, 0, 1, 2}), 1e-12)
	assert.InDelta(t, 2.0, Estimate([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, 10.0, Estimate([]float64{7, 8, 9, 10, 11, 12, 13}), 1e-12)
}

func TestEstimate_DropsNonFiniteAndZero(t *testing.T) {
	got := Estimate([]float64{1, 2, 3, 0, math.NaN(), math.Inf(1)})
	assert.InDelta(t, 2.0, got, 1e-12)
}

func TestEstimate_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Estimate(nil)))
	assert.True(t, math.IsNaN(Estimate([]float64{0, 0, math.NaN()})))
}

func TestEstimate_RobustToOutlier(t *testing.T) {
	clean := Estimate([]float64{1, 2, 3, 4, 5})
	dirty := Estimate([]float64{1, 2, 3, 4, 500})
	assert.InDelta(t, 3.0, clean, 1e-12)
	assert.Less(t, dirty, 4.0)
}

func TestClean(t *testing.T) {
	got := Clean([]float64{0, -1, math.NaN(), 2, math.Inf(-1)})
	assert.Equal(t, []float64{-1, 2}, got)
}

func TestBootstrap_BracketsEstimate(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	xs := make([]float64, 80)
	for i := range xs {
		xs[i] = 3 + rng.NormFloat64()*4
	}

	res := Bootstrap(xs, Options{Resamples: 1000, Confidence: 0.95, Seed: 42})
	require.Equal(t, 80, res.N)
	assert.LessOrEqual(t, res.Lo, res.Estimate)
	assert.GreaterOrEqual(t, res.Hi, res.Estimate)
	assert.Less(t, res.Lo, res.Hi)
}

func TestBootstrap_Deterministic(t *testing.T) {
	xs := []float64{-3, 1.5, 2, 4, 4.5, 7, -0.5, 9, 3, 2.2}
	a := Bootstrap(xs, Options{Resamples: 200, Seed: 42})
	b := Bootstrap(xs, Options{Resamples: 200, Seed: 42})
	assert.Equal(t, a, b)

	c := Bootstrap(xs, Options{Resamples: 200, Seed: 43})
	assert.Equal(t, a.Estimate, c.Estimate)
}

func TestBootstrap_Defaults(t *testing.T) {
	res := Bootstrap([]float64{1, 2, 3}, Options{})
	assert.InDelta(t, 2.0, res.Estimate, 1e-12)
	assert.Equal(t, 3, res.N)
	assert.GreaterOrEqual(t, res.Lo, 1.0)
	assert.LessOrEqual(t, res.Hi, 3.0)
}

func TestBootstrap_Empty(t *testing.T) {
	res := Bootstrap([]float64{0, math.NaN()}, Options{Resamples: 10})
	assert.Equal(t, 0, res.N)
	assert.True(t, math.IsNaN(res.Estimate))
	assert.True(t, math.IsNaN(res.Lo))
	assert.True(t, math.IsNaN(res.Hi))
}

func TestBootstrap_ConstantSample(t *testing.T) {
	res := Bootstrap([]float64{2.5, 2.5, 2.5, 2.5}, Options{Resamples: 50, Seed: 1})
	assert.Equal(t, 2.5, res.Estimate)
	assert.Equal(t, 2.5, res.Lo)
	assert.Equal(t, 2.5, res.Hi)
}
