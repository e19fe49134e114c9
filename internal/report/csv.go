package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bakeoff/internal/evidence"
	"github.com/sells-group/bakeoff/internal/robust"
	"github.com/sells-group/bakeoff/internal/stratify"
)

// Artifact file names.
const (
	EvidenceFile = "bakeoff_evidence_table.csv"
	CompactFile  = "wilsons_summary_compact.csv"
	MarkdownFile = "report.md"
	LaTeXFile    = "report.tex"
	HTMLFile     = "report.html"
	SummaryFile  = "summary.yaml"
	StrataFile   = "strata.csv"
)

// EvidenceHeader is the header of the evidence table.
var EvidenceHeader = []string{"Bin", "Count", "Percent"}

// CompactHeader is the header of the Wilsons aggregate table.
var CompactHeader = []string{"param", "n", "median", "MAD", "p16", "p84"}

// StrataHeader is the header of the strata table.
var StrataHeader = []string{
	"covariate", "bin",
	"n_BIC", "wins_BIC", "wins_pct_BIC", "q1_BIC", "med_BIC", "q3_BIC",
	"n_AICc", "wins_AICc", "wins_pct_AICc", "q1_AICc", "med_AICc", "q3_AICc",
}

// WriteEvidenceCSV writes the evidence table in canonical bin order.
// Percent is the share of all rows, unbinned included.
func WriteEvidenceCSV(w io.Writer, t evidence.Table) error {
	records := [][]string{EvidenceHeader}
	for _, b := range t.Bins {
		records = append(records, []string{b.Label, strconv.Itoa(b.Count), pct(b.Fraction)})
	}
	return writeAll(w, records, "evidence")
}

// WriteCompactCSV writes the robust aggregates of cC2, alpha_Ric and B.
func WriteCompactCSV(w io.Writer, r *Report) error {
	records := [][]string{CompactHeader}
	for _, p := range []struct {
		name string
		s    robust.Summary
	}{
		{"cC2", r.CC2},
		{"alpha_Ric", r.AlphaRic},
		{"B", r.B},
	} {
		records = append(records, []string{
			p.name, strconv.Itoa(p.s.N),
			cell(p.s.Median), cell(p.s.MAD), cell(p.s.P16), cell(p.s.P84),
		})
	}
	return writeAll(w, records, "compact")
}

// WriteStrataCSV writes one row per (covariate, bin).
func WriteStrataCSV(w io.Writer, rows []stratify.Row) error {
	records := [][]string{StrataHeader}
	for _, r := range rows {
		rec := []string{r.Covariate, r.Bin}
		rec = append(rec, statsCells(r.BIC)...)
		rec = append(rec, statsCells(r.AICc)...)
		records = append(records, rec)
	}
	return writeAll(w, records, "strata")
}

func statsCells(s stratify.Stats) []string {
	return []string{
		strconv.Itoa(s.N), strconv.Itoa(s.Wins), cell(s.WinFrac),
		cell(s.Quartiles.Q1), cell(s.Quartiles.Median), cell(s.Quartiles.Q3),
	}
}

// cell renders a CSV number; NaN is an empty cell.
func cell(v float64) string {
	if v != v {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeAll(w io.Writer, records [][]string, what string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return eris.Wrapf(err, "report: write %s csv", what)
	}
	return nil
}
