// Package model defines the records that flow through the bakeoff pipeline.
package model

// StatusOK marks a converged fit in a fit-summary table.
const StatusOK = "OK"

// FitRecord is one candidate fit of one model to one galaxy.
type FitRecord struct {
	ID     string  `json:"id"`
	BIC    float64 `json:"bic"`
	AICc   float64 `json:"aicc"`
	SFrac  float64 `json:"s_frac"`
	RhoAR1 float64 `json:"rho_ar1"`
	Status string  `json:"fit_status,omitempty"`
	Row    int     `json:"-"` // zero-based data row in the source table
}

// OK reports whether the fit converged.
func (f FitRecord) OK() bool { return f.Status == StatusOK }
