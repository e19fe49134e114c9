package wilsons

import (
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/table"
)

const passStatus = model.StatusPass

// Column names of a Wilsons table.
const (
	ColID          = "ID"
	ColN           = "n"
	ColNOuter      = "n_outer"
	ColR2Outer     = "r2_outer"
	ColFracUsed    = "frac_used"
	ColA           = "A"
	ColAErr        = "A_err"
	ColB           = "B"
	ColBErr        = "B_err"
	ColAlphaLog    = "alpha_log"
	ColAlphaLogErr = "alpha_log_err"
	ColCC2         = "cC2"
	ColCC2Err      = "cC2_err"
	ColAlphaRic    = "alpha_Ric"
	ColAlphaRicErr = "alpha_Ric_err"
	ColRMax        = "R_max"
	ColFiniteOuter = "finite_outer"
)

// CovariateColumns may be filled from the sidecar when the table lacks
// them.
var CovariateColumns = []string{ColRMax, ColFiniteOuter, ColNOuter, ColR2Outer, ColFracUsed}

// ReportColumns are needed to aggregate the extracted coefficients.
var ReportColumns = []string{ColID, ColCC2, ColAlphaRic, ColB}

// Options select how a Wilsons table is reconciled with its sidecar.
type Options struct {
	// PassOnly keeps rows whose sidecar status is PASS.
	PassOnly bool
	// Augment fills covariate columns that are absent or entirely NaN
	// from the sidecar.
	Augment bool
	// Require lists columns that must be present. ID is always required.
	Require []string
}

// Load reads a Wilsons CSV and its JSON sidecar.
func Load(csvPath, jsonPath string, opts Options) ([]model.WilsonRecord, error) {
	t, err := table.Load(csvPath)
	if err != nil {
		return nil, err
	}
	meta, err := LoadMetadata(jsonPath)
	if err != nil {
		return nil, err
	}
	return Parse(t, meta, opts)
}

// Parse converts a Wilsons table into records.
func Parse(t *table.Table, meta Metadata, opts Options) ([]model.WilsonRecord, error) {
	req := append([]string{ColID}, opts.Require...)
	if err := t.Require(req...); err != nil {
		return nil, err
	}

	augment := map[string]bool{}
	if opts.Augment {
		for _, col := range CovariateColumns {
			if allNaN(t.Floats(col)) {
				augment[col] = true
			}
		}
	}

	var pass map[string]bool
	if opts.PassOnly {
		pass = meta.PassIDs()
	}

	out := make([]model.WilsonRecord, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		id := t.String(i, ColID)
		if opts.PassOnly && !pass[id] {
			continue
		}
		entry := meta[id]

		w := model.WilsonRecord{
			ID:          id,
			N:           t.Float(i, ColN),
			A:           t.Float(i, ColA),
			AErr:        t.Float(i, ColAErr),
			B:           t.Float(i, ColB),
			BErr:        t.Float(i, ColBErr),
			AlphaLog:    t.Float(i, ColAlphaLog),
			AlphaLogErr: t.Float(i, ColAlphaLogErr),
			CC2:         t.Float(i, ColCC2),
			CC2Err:      t.Float(i, ColCC2Err),
			AlphaRic:    t.Float(i, ColAlphaRic),
			AlphaRicErr: t.Float(i, ColAlphaRicErr),
			Status:      entry.Status,
			Covariates:  make(map[string]float64, len(CovariateColumns)),
		}
		for _, col := range CovariateColumns {
			if augment[col] {
				w.Covariates[col] = entry.Value(col)
			} else {
				w.Covariates[col] = t.Float(i, col)
			}
		}
		w.NOuter = w.Covariates[ColNOuter]
		w.R2Outer = w.Covariates[ColR2Outer]
		w.FracUsed = w.Covariates[ColFracUsed]
		out = append(out, w)
	}

	zap.L().Debug("wilsons: parsed table",
		zap.String("source", t.Source()),
		zap.Int("rows", t.Len()),
		zap.Int("kept", len(out)),
		zap.Int("augmented", len(augment)),
	)
	return out, nil
}

// Column extracts a named parameter or covariate from every record.
func Column(ws []model.WilsonRecord, name string) []float64 {
	out := make([]float64, len(ws))
	for i, w := range ws {
		out[i] = value(w, name)
	}
	return out
}

func value(w model.WilsonRecord, name string) float64 {
	switch name {
	case ColN:
		return w.N
	case ColA:
		return w.A
	case ColAErr:
		return w.AErr
	case ColB:
		return w.B
	case ColBErr:
		return w.BErr
	case ColAlphaLog:
		return w.AlphaLog
	case ColAlphaLogErr:
		return w.AlphaLogErr
	case ColCC2:
		return w.CC2
	case ColCC2Err:
		return w.CC2Err
	case ColAlphaRic:
		return w.AlphaRic
	case ColAlphaRicErr:
		return w.AlphaRicErr
	default:
		return w.Covariate(name)
	}
}

// allNaN reports whether xs is empty or holds only NaN. An absent column
// reads as all NaN.
func allNaN(xs []float64) bool {
	for _, x := range xs {
		if !math.IsNaN(x) {
			return false
		}
	}
	return true
}
