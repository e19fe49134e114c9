package model

// Comparison pairs the best fits of the left (reference) and right
// (alternative) models for one galaxy. Deltas are right minus left, so a
// positive DeltaBIC favours the left model.
type Comparison struct {
	ID         string    `json:"id"`
	Left       FitRecord `json:"left"`
	Right      FitRecord `json:"right"`
	DeltaBIC   float64   `json:"d_bic"`
	DeltaAICc  float64   `json:"d_aicc"`
	DeltaSFrac float64   `json:"d_sfrac"`
	DeltaRho   float64   `json:"d_rho"`
}

// Delta returns the per-galaxy criterion deltas of the comparison.
func (c Comparison) Delta() Delta {
	return Delta{ID: c.ID, BIC: c.DeltaBIC, AICc: c.DeltaAICc}
}

// Delta is the criterion difference for one galaxy as read back from a
// written comparison table.
type Delta struct {
	ID   string  `json:"id"`
	BIC  float64 `json:"d_bic"`
	AICc float64 `json:"d_aicc"`
}

// Models names the two sides of a comparison.
type Models struct {
	Left  string `json:"left" yaml:"left" mapstructure:"left"`
	Right string `json:"right" yaml:"right" mapstructure:"right"`
}

// DefaultModels is the EGR (left) versus ΛCDM (right) bakeoff.
var DefaultModels = Models{Left: "EGR", Right: "LCDM"}

// DeltaBICs extracts the ΔBIC column.
func DeltaBICs(ds []Delta) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.BIC
	}
	return out
}

// DeltaAICcs extracts the ΔAICc column.
func DeltaAICcs(ds []Delta) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.AICc
	}
	return out
}
