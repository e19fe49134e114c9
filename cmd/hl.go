package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bakeoff/internal/bakeoff"
	"github.com/sells-group/bakeoff/internal/hl"
	"github.com/sells-group/bakeoff/internal/metrics"
	"github.com/sells-group/bakeoff/internal/model"
)

var hlCmd = &cobra.Command{
	Use:   "hl",
	Short: "Hodges–Lehmann location shift of ΔBIC and ΔAICc with bootstrap CI",
	RunE: func(cmd *cobra.Command, _ []string) error {
		inPath := stringFlag(cmd, "bakeoff", cfg.Inputs.Bakeoff)
		cfg.Bootstrap.Resamples = intFlag(cmd, "resamples", cfg.Bootstrap.Resamples)
		cfg.Bootstrap.Seed = uint64Flag(cmd, "seed", cfg.Bootstrap.Seed)
		cfg.Bootstrap.Confidence = float64Flag(cmd, "confidence", cfg.Bootstrap.Confidence)

		if err := cfg.Validate("hl"); err != nil {
			return err
		}

		rec := metrics.New("hl")
		done := rec.Stage("load")
		deltas, err := bakeoff.LoadDeltas(inPath)
		done()
		if err != nil {
			return eris.Wrap(err, "hl")
		}
		rec.Loaded("bakeoff", len(deltas), 0)
		rec.Galaxies(len(deltas))

		opts := hl.Options{
			Resamples:  cfg.Bootstrap.Resamples,
			Confidence: cfg.Bootstrap.Confidence,
			Seed:       cfg.Bootstrap.Seed,
		}
		done = rec.Stage("bootstrap")
		bic := hl.Bootstrap(model.DeltaBICs(deltas), opts)
		aicc := hl.Bootstrap(model.DeltaAICcs(deltas), opts)
		done()

		out := cmd.OutOrStdout()
		formatHL(out, bakeoff.ColDeltaBIC, bic, opts.Confidence)
		formatHL(out, bakeoff.ColDeltaAICc, aicc, opts.Confidence)

		return flushMetrics(rec)
	},
}

func formatHL(out io.Writer, col string, r hl.Result, confidence float64) {
	_, _ = fmt.Fprintf(out, "%s: HL=%.3f, %g%% HL-CI≈[%.3f, %.3f], n=%d\n",
		col, r.Estimate, 100*confidence, r.Lo, r.Hi, r.N)
}

func init() {
	hlCmd.Flags().String("bakeoff", "", "comparison table (default inputs.bakeoff)")
	hlCmd.Flags().Int("resamples", hl.DefaultResamples, "bootstrap resamples")
	hlCmd.Flags().Uint64("seed", hl.DefaultSeed, "bootstrap seed")
	hlCmd.Flags().Float64("confidence", hl.DefaultConfidence, "confidence level of the interval")
	rootCmd.AddCommand(hlCmd)
}
