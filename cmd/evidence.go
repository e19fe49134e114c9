package main

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bakeoff/internal/bakeoff"
	"github.com/sells-group/bakeoff/internal/evidence"
	"github.com/sells-group/bakeoff/internal/metrics"
	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/report"
	"github.com/sells-group/bakeoff/internal/robust"
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Bin ΔBIC on the Kass–Raftery scale",
	Long:  "Reads a comparison table, counts ΔBIC per evidence bin, prints wins and quartiles and writes the evidence table.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		inPath := stringFlag(cmd, "bakeoff", cfg.Inputs.Bakeoff)
		outPath := stringFlag(cmd, "out", cfg.Output.Evidence)

		if err := cfg.Validate("evidence"); err != nil {
			return err
		}

		rec := metrics.New("evidence")
		done := rec.Stage("load")
		deltas, err := bakeoff.LoadDeltas(inPath)
		done()
		if err != nil {
			return eris.Wrap(err, "evidence")
		}
		rec.Loaded("bakeoff", len(deltas), 0)
		rec.Galaxies(len(deltas))

		bic := model.DeltaBICs(deltas)
		ev := evidence.NewScale(cfg.Models).Tabulate(bic)
		rec.Unbinned(ev.NaN, ev.Inf)

		var buf bytes.Buffer
		if err := report.WriteEvidenceCSV(&buf, ev); err != nil {
			return eris.Wrap(err, "evidence")
		}
		if err := report.WriteFileAtomic(outPath, buf.Bytes()); err != nil {
			return eris.Wrap(err, "evidence")
		}
		zap.L().Info("evidence table written",
			zap.String("out", outPath),
			zap.Int("rows", ev.N),
			zap.Int("binned", ev.Binned()),
		)

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, bakeoff.ColDeltaBIC)
		formatEvidence(out, ev)

		wins := bakeoff.Tally(deltas)
		n := len(deltas)
		_, _ = fmt.Fprintf(out, "\n%s wins (BIC):   %d/%d  (%s)\n", cfg.Models.Left, wins.LeftBIC, n, percentOf(wins.LeftBIC, n))
		_, _ = fmt.Fprintf(out, "%s wins (AICc):  %d/%d  (%s)\n", cfg.Models.Left, wins.LeftAICc, n, percentOf(wins.LeftAICc, n))

		qb := robust.QuartilesOf(bic)
		qa := robust.QuartilesOf(model.DeltaAICcs(deltas))
		_, _ = fmt.Fprintf(out, "\nQuartiles dBIC :  Q1=%.2f, Med=%.2f, Q3=%.2f\n", qb.Q1, qb.Median, qb.Q3)
		_, _ = fmt.Fprintf(out, "Quartiles dAICc:  Q1=%.2f, Med=%.2f, Q3=%.2f\n", qa.Q1, qa.Median, qa.Q3)
		_, _ = fmt.Fprintf(out, "\nwrote: %s\n", outPath)

		return flushMetrics(rec)
	},
}

// formatEvidence writes one line per evidence bin and, when any value
// fell in no bin, the unbinned breakdown.
func formatEvidence(out io.Writer, ev evidence.Table) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, b := range ev.Bins {
		_, _ = fmt.Fprintf(w, "%s\t%d\t(%s)\n", b.Label, b.Count, percentOf(b.Count, ev.N))
	}
	_ = w.Flush()
	if u := ev.Unbinned(); u > 0 {
		_, _ = fmt.Fprintf(out, "\nUnbinned (NaN/±inf): %d  [NaN=%d, ±inf=%d]\n", u, ev.NaN, ev.Inf)
	}
}

func percentOf(k, n int) string {
	if n == 0 {
		return "nan%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(k)/float64(n))
}

func init() {
	evidenceCmd.Flags().String("bakeoff", "", "comparison table (default inputs.bakeoff)")
	evidenceCmd.Flags().String("out", "", "evidence table to write (default output.evidence)")
	rootCmd.AddCommand(evidenceCmd)
}
