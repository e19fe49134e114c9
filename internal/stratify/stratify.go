package stratify

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/robust"
)

// DefaultCovariates are tried in order.
var DefaultCovariates = []string{"n_outer", "r2_outer", "R_max", "finite_outer"}

// ErrNoCovariates is returned when no candidate covariate has enough data.
var ErrNoCovariates = eris.New("stratify: no usable covariates found")

// Stats summarizes one delta column within a bin.
type Stats struct {
	N         int              `json:"n" yaml:"n"`             // non-NaN deltas
	Wins      int              `json:"wins" yaml:"wins"`       // deltas > 0
	WinFrac   float64          `json:"win_pct" yaml:"win_pct"` // wins over rows in the bin
	Quartiles robust.Quartiles `json:"quartiles" yaml:"quartiles"`
}

// Row is the summary of one (covariate, bin) pair.
type Row struct {
	Covariate string `json:"covariate" yaml:"covariate"`
	Bin       string `json:"bin" yaml:"bin"`
	BIC       Stats  `json:"bic" yaml:"bic"`
	AICc      Stats  `json:"aicc" yaml:"aicc"`
}

// Options configure Stratify.
type Options struct {
	Covariates []string
}

// Summarize computes Stats over the deltas of one bin.
func Summarize(xs []float64) Stats {
	s := Stats{Quartiles: robust.QuartilesOf(xs)}
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		s.N++
		if x > 0 {
			s.Wins++
		}
	}
	s.WinFrac = float64(s.Wins) / float64(max(1, len(xs)))
	return s
}

// Usable returns the candidates that carry at least MinFinite finite values
// across the Wilsons records.
func Usable(ws []model.WilsonRecord, candidates []string) []string {
	var out []string
	for _, c := range candidates {
		n := 0
		for _, w := range ws {
			v := w.Covariate(c)
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				n++
			}
		}
		if n >= MinFinite {
			out = append(out, c)
		}
	}
	return out
}

// Stratify left-joins deltas to Wilsons covariates by identifier and
// summarizes ΔBIC and ΔAICc within tercile bins of each usable covariate.
// Degenerate covariates are skipped. Fails with ErrNoCovariates when no
// candidate is usable.
func Stratify(deltas []model.Delta, ws []model.WilsonRecord, opts Options) ([]Row, error) {
	candidates := opts.Covariates
	if len(candidates) == 0 {
		candidates = DefaultCovariates
	}
	covs := Usable(ws, candidates)
	if len(covs) == 0 {
		return nil, eris.Wrapf(ErrNoCovariates, "stratify: need any of %v", candidates)
	}

	byID := make(map[string]model.WilsonRecord, len(ws))
	for _, w := range ws {
		if _, dup := byID[w.ID]; !dup {
			byID[w.ID] = w
		}
	}

	var rows []Row
	for _, cov := range covs {
		x := make([]float64, len(deltas))
		for i, d := range deltas {
			x[i] = math.NaN()
			if w, ok := byID[d.ID]; ok {
				x[i] = w.Covariate(cov)
			}
		}

		bins := Terciles(x)
		if bins == nil {
			zap.L().Info("stratify: skipping degenerate covariate", zap.String("covariate", cov))
			continue
		}

		bic := make([][]float64, len(bins))
		aicc := make([][]float64, len(bins))
		for i, d := range deltas {
			b := Assign(bins, x[i])
			if b < 0 {
				continue
			}
			bic[b] = append(bic[b], d.BIC)
			aicc[b] = append(aicc[b], d.AICc)
		}
		for b, bin := range bins {
			if len(bic[b]) == 0 {
				continue
			}
			rows = append(rows, Row{
				Covariate: cov,
				Bin:       bin.Label,
				BIC:       Summarize(bic[b]),
				AICc:      Summarize(aicc[b]),
			})
		}
	}
	return rows, nil
}
