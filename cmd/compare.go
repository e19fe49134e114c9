package main

import (
	"bytes"
	"context"
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

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Join the best fits of two models and compute per-galaxy deltas",
	Long:  "Reduces each fit summary to the lowest-BIC row per galaxy, inner-joins the two on ID, writes the comparison table sorted by ΔBIC and prints win counts.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := commandContext(cmd)

		leftPath := stringFlag(cmd, "egr", cfg.Inputs.LeftSummary)
		rightPath := stringFlag(cmd, "lcdm", cfg.Inputs.RightSummary)
		outPath := stringFlag(cmd, "out", cfg.Output.Comparison)
		allStatus := boolFlag(cmd, "all-status", cfg.Inputs.AllStatus)
		save, _ := cmd.Flags().GetBool("save")

		if err := cfg.Validate("compare"); err != nil {
			return err
		}
		if save {
			if err := cfg.Validate("save"); err != nil {
				return err
			}
		}

		rec := metrics.New("compare")
		done := rec.Stage("load")
		left, right, err := bakeoff.LoadPair(ctx, leftPath, rightPath, bakeoff.LoadOptions{AllStatus: allStatus})
		done()
		if err != nil {
			return eris.Wrap(err, "compare")
		}
		rec.Loaded("left", left.Loaded, left.Dropped)
		rec.Loaded("right", right.Loaded, right.Dropped)

		done = rec.Stage("join")
		res := bakeoff.Compare(left, right)
		done()
		rec.Galaxies(len(res.Comparisons))

		var buf bytes.Buffer
		if err := bakeoff.WriteComparisons(&buf, cfg.Models, res.Comparisons); err != nil {
			return eris.Wrap(err, "compare")
		}
		if err := report.WriteFileAtomic(outPath, buf.Bytes()); err != nil {
			return eris.Wrap(err, "compare")
		}
		zap.L().Info("compare complete",
			zap.String("out", outPath),
			zap.Int("galaxies", len(res.Comparisons)),
			zap.Int("left_dropped", left.Dropped),
			zap.Int("right_dropped", right.Dropped),
		)

		ev := evidence.NewScale(cfg.Models).Tabulate(model.DeltaBICs(bakeoff.Deltas(res.Comparisons)))
		rec.Unbinned(ev.NaN, ev.Inf)

		out := cmd.OutOrStdout()
		formatCompare(out, cfg.Models, res, ev)

		if save {
			runID, err := saveRun(ctx, res, leftPath, rightPath)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "\nsaved run: %s\n", runID)
		}

		return flushMetrics(rec)
	},
}

func saveRun(ctx context.Context, res *bakeoff.Result, leftPath, rightPath string) (string, error) {
	st, err := initStore(ctx)
	if err != nil {
		return "", eris.Wrap(err, "compare: open store")
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return "", err
	}

	run := &model.Run{
		Models:     cfg.Models,
		LeftInput:  leftPath,
		RightInput: rightPath,
		Galaxies:   len(res.Comparisons),
		Wins:       res.Wins,
	}
	if err := st.SaveRun(ctx, run, res.Comparisons); err != nil {
		return "", eris.Wrap(err, "compare: save run")
	}
	return run.ID, nil
}

// formatCompare writes the win counts, delta descriptions and evidence
// bins of a comparison.
func formatCompare(out io.Writer, m model.Models, res *bakeoff.Result, ev evidence.Table) {
	n := len(res.Comparisons)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "n galaxies:\t%d\n", n)
	_, _ = fmt.Fprintf(w, "%s wins (BIC):\t%d/%d\n", m.Left, res.Wins.LeftBIC, n)
	_, _ = fmt.Fprintf(w, "%s wins (BIC):\t%d/%d\n", m.Right, res.Wins.RightBIC, n)
	_, _ = fmt.Fprintf(w, "%s wins (AICc):\t%d/%d\n", m.Left, res.Wins.LeftAICc, n)
	_, _ = fmt.Fprintf(w, "%s wins (AICc):\t%d/%d\n", m.Right, res.Wins.RightAICc, n)
	_ = w.Flush()

	cols := []struct {
		name string
		vals []float64
	}{
		{bakeoff.ColDeltaBIC, make([]float64, n)},
		{bakeoff.ColDeltaAICc, make([]float64, n)},
		{bakeoff.ColDeltaSFrac, make([]float64, n)},
		{bakeoff.ColDeltaRho, make([]float64, n)},
	}
	for i, c := range res.Comparisons {
		cols[0].vals[i] = c.DeltaBIC
		cols[1].vals[i] = c.DeltaAICc
		cols[2].vals[i] = c.DeltaSFrac
		cols[3].vals[i] = c.DeltaRho
	}

	_, _ = fmt.Fprintln(out, "\nQuartiles:")
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(w, "\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, c := range cols {
		d := robust.Describe(c.vals)
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t\n",
			c.name, d.Count, d.Mean, d.Std, d.Min, d.Q25, d.Q50, d.Q75, d.Max)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out, "\nΔBIC evidence bins:")
	formatEvidence(out, ev)
}

func init() {
	compareCmd.Flags().String("egr", "", "left model fit summary (default inputs.left_summary)")
	compareCmd.Flags().String("lcdm", "", "right model fit summary (default inputs.right_summary)")
	compareCmd.Flags().String("out", "", "comparison table to write (default output.comparison)")
	compareCmd.Flags().Bool("all-status", false, "keep fits whose fit_status is not OK")
	compareCmd.Flags().Bool("save", false, "archive the run in the configured store")
	rootCmd.AddCommand(compareCmd)
}
