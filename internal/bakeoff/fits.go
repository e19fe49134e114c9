// Package bakeoff reduces per-model fit summaries to one best fit per
// galaxy and joins two models into per-galaxy comparisons.
package bakeoff

import (
	"math"
	"sort"

	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/table"
)

// Fit-summary column names.
const (
	ColID     = "ID"
	ColBIC    = "BIC"
	ColAICc   = "AICc"
	ColSFrac  = "s_frac"
	ColRhoAR1 = "rho_AR1"
	ColStatus = "fit_status"
)

// SummaryColumns are required in every fit-summary table.
var SummaryColumns = []string{ColID, ColBIC, ColAICc, ColSFrac, ColRhoAR1}

// ParseFits converts a fit-summary table into fit records. Numeric cells
// that do not parse become NaN. When requireStatus is set the fit_status
// column must be present.
func ParseFits(t *table.Table, requireStatus bool) ([]model.FitRecord, error) {
	cols := SummaryColumns
	if requireStatus {
		cols = append(append([]string{}, SummaryColumns...), ColStatus)
	}
	if err := t.Require(cols...); err != nil {
		return nil, err
	}

	fits := make([]model.FitRecord, t.Len())
	for i := range fits {
		fits[i] = model.FitRecord{
			ID:     t.String(i, ColID),
			BIC:    t.Float(i, ColBIC),
			AICc:   t.Float(i, ColAICc),
			SFrac:  t.Float(i, ColSFrac),
			RhoAR1: t.Float(i, ColRhoAR1),
			Status: t.String(i, ColStatus),
			Row:    i,
		}
	}
	return fits, nil
}

// FilterOK keeps converged fits.
func FilterOK(fits []model.FitRecord) []model.FitRecord {
	out := make([]model.FitRecord, 0, len(fits))
	for _, f := range fits {
		if f.OK() {
			out = append(out, f)
		}
	}
	return out
}

// BestFit keeps, for each identifier, the fit with the lowest BIC. Ties go
// to the earliest row. A NaN BIC loses to any number; an identifier whose
// BICs are all NaN keeps its first row. The result is ordered by
// identifier.
func BestFit(fits []model.FitRecord) []model.FitRecord {
	best := make(map[string]int, len(fits))
	for i, f := range fits {
		j, seen := best[f.ID]
		if !seen || lowerBIC(f.BIC, fits[j].BIC) {
			best[f.ID] = i
		}
	}

	out := make([]model.FitRecord, 0, len(best))
	for _, i := range best {
		out = append(out, fits[i])
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// lowerBIC reports whether a strictly beats b.
func lowerBIC(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}
