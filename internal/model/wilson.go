package model

import "math"

// StatusPass marks a galaxy whose Wilson-coefficient extraction passed
// quality checks.
const StatusPass = "PASS"

// WilsonRecord holds the extracted IR Wilson coefficients for one galaxy.
// Missing or non-numeric values are NaN.
type WilsonRecord struct {
	ID          string  `json:"id"`
	N           float64 `json:"n"`
	NOuter      float64 `json:"n_outer"`
	R2Outer     float64 `json:"r2_outer"`
	FracUsed    float64 `json:"frac_used"`
	A           float64 `json:"A"`
	AErr        float64 `json:"A_err"`
	B           float64 `json:"B"`
	BErr        float64 `json:"B_err"`
	AlphaLog    float64 `json:"alpha_log"`
	AlphaLogErr float64 `json:"alpha_log_err"`
	CC2         float64 `json:"cC2"`
	CC2Err      float64 `json:"cC2_err"`
	AlphaRic    float64 `json:"alpha_Ric"`
	AlphaRicErr float64 `json:"alpha_Ric_err"`
	Status      string  `json:"status,omitempty"`

	// Covariates keyed by column name (n_outer, r2_outer, R_max,
	// finite_outer, frac_used), after sidecar augmentation.
	Covariates map[string]float64 `json:"covariates,omitempty"`
}

// Covariate returns the named covariate, or NaN when absent.
func (w WilsonRecord) Covariate(name string) float64 {
	if v, ok := w.Covariates[name]; ok {
		return v
	}
	return math.NaN()
}
