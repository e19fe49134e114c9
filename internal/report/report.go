// Package report fuses a bakeoff comparison with the Wilsons extraction and
// renders the aggregate numbers as CSV, Markdown, LaTeX, HTML and YAML.
package report

import (
	"math"

	"github.com/sells-group/bakeoff/internal/bakeoff"
	"github.com/sells-group/bakeoff/internal/evidence"
	"github.com/sells-group/bakeoff/internal/hl"
	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/robust"
	"github.com/sells-group/bakeoff/internal/signedrank"
	"github.com/sells-group/bakeoff/internal/wilsons"
)

// Report holds every number the emitted artifacts are derived from.
type Report struct {
	Models   model.Models
	N        int
	Wins     model.Wins
	Evidence evidence.Table

	BIC  robust.Quartiles
	AICc robust.Quartiles

	SignedRankBIC  signedrank.Result
	SignedRankAICc signedrank.Result

	// Optional Hodges–Lehmann blocks; nil when not computed.
	HLBIC  *hl.Result
	HLAICc *hl.Result

	CC2      robust.Summary
	AlphaRic robust.Summary
	B        robust.Summary
	// BBound is the 84th percentile of |B| over non-NaN B.
	BBound float64
}

// Options configure Build.
type Options struct {
	SignedRank signedrank.Options
	// HL enables the Hodges–Lehmann bootstrap on both deltas.
	HL        bool
	Bootstrap hl.Options
}

// Build computes the report aggregates. ws should already be restricted to
// PASS galaxies.
func Build(models model.Models, deltas []model.Delta, ws []model.WilsonRecord, opts Options) *Report {
	bic := model.DeltaBICs(deltas)
	aicc := model.DeltaAICcs(deltas)

	b := wilsons.Column(ws, wilsons.ColB)
	absB := make([]float64, len(b))
	for i, v := range b {
		absB[i] = math.Abs(v)
	}

	r := &Report{
		Models:         models,
		N:              len(deltas),
		Wins:           bakeoff.Tally(deltas),
		Evidence:       evidence.NewScale(models).Tabulate(bic),
		BIC:            robust.QuartilesOf(bic),
		AICc:           robust.QuartilesOf(aicc),
		SignedRankBIC:  signedrank.Test(bic, opts.SignedRank),
		SignedRankAICc: signedrank.Test(aicc, opts.SignedRank),
		CC2:            robust.Summarize(wilsons.Column(ws, wilsons.ColCC2)),
		AlphaRic:       robust.Summarize(wilsons.Column(ws, wilsons.ColAlphaRic)),
		B:              robust.Summarize(b),
		BBound:         robust.Percentiles(absB, 84)[0],
	}
	if opts.HL {
		hb := hl.Bootstrap(bic, opts.Bootstrap)
		ha := hl.Bootstrap(aicc, opts.Bootstrap)
		r.HLBIC, r.HLAICc = &hb, &ha
	}
	return r
}

// WinFracBIC is the fraction of galaxies where the left model wins on BIC.
func (r *Report) WinFracBIC() float64 { return frac(r.Wins.LeftBIC, r.N) }

// WinFracAICc is the fraction of galaxies where the left model wins on AICc.
func (r *Report) WinFracAICc() float64 { return frac(r.Wins.LeftAICc, r.N) }

func frac(k, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return float64(k) / float64(n)
}
