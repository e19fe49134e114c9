package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bakeoff/internal/bakeoff"
	"github.com/sells-group/bakeoff/internal/hl"
	"github.com/sells-group/bakeoff/internal/metrics"
	"github.com/sells-group/bakeoff/internal/report"
	"github.com/sells-group/bakeoff/internal/signedrank"
	"github.com/sells-group/bakeoff/internal/wilsons"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fuse the bakeoff with Wilsons fits and emit report artifacts",
	Long:  "Computes evidence bins, wins, quartiles, signed-rank tests and robust Wilsons parameter summaries over PASS galaxies and writes CSV, Markdown, LaTeX, HTML and YAML artifacts.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		inPath := stringFlag(cmd, "bakeoff", cfg.Inputs.Bakeoff)
		csvPath := stringFlag(cmd, "wilsons-csv", cfg.Inputs.WilsonsCSV)
		jsonPath := stringFlag(cmd, "wilsons-json", cfg.Inputs.WilsonsJSON)
		outdir := stringFlag(cmd, "outdir", cfg.Output.ReportDir)
		withHL, _ := cmd.Flags().GetBool("hl")

		if err := cfg.Validate("report"); err != nil {
			return err
		}

		rec := metrics.New("report")
		done := rec.Stage("load")
		deltas, err := bakeoff.LoadDeltas(inPath)
		if err != nil {
			done()
			return eris.Wrap(err, "report")
		}
		ws, err := wilsons.Load(csvPath, jsonPath, wilsons.Options{
			PassOnly: true,
			Require:  wilsons.ReportColumns[1:],
		})
		done()
		if err != nil {
			return eris.Wrap(err, "report")
		}
		rec.Loaded("bakeoff", len(deltas), 0)
		rec.Loaded("wilsons", len(ws), 0)
		rec.Galaxies(len(deltas))

		done = rec.Stage("aggregate")
		r := report.Build(cfg.Models, deltas, ws, report.Options{
			SignedRank: signedrank.Options{MinN: cfg.SignedRank.MinN, ExactMaxN: cfg.SignedRank.ExactMaxN},
			HL:         withHL,
			Bootstrap: hl.Options{
				Resamples:  cfg.Bootstrap.Resamples,
				Confidence: cfg.Bootstrap.Confidence,
				Seed:       cfg.Bootstrap.Seed,
			},
		})
		done()
		rec.Unbinned(r.Evidence.NaN, r.Evidence.Inf)

		done = rec.Stage("write")
		paths, err := report.WriteAll(outdir, r)
		done()
		if err != nil {
			return eris.Wrap(err, "report")
		}
		zap.L().Info("report written",
			zap.String("outdir", outdir),
			zap.Int("galaxies", r.N),
			zap.Int("binned", r.Evidence.Binned()),
			zap.Int("pass", len(ws)),
		)

		out := cmd.OutOrStdout()
		for _, p := range paths {
			_, _ = fmt.Fprintf(out, "wrote: %s\n", p)
		}
		return flushMetrics(rec)
	},
}

func init() {
	reportCmd.Flags().String("bakeoff", "", "comparison table (default inputs.bakeoff)")
	reportCmd.Flags().String("wilsons-csv", "", "Wilsons fit table (default inputs.wilsons_csv)")
	reportCmd.Flags().String("wilsons-json", "", "Wilsons JSON sidecar (default inputs.wilsons_json)")
	reportCmd.Flags().String("outdir", "", "report directory (default output.report_dir)")
	reportCmd.Flags().Bool("hl", false, "include Hodges–Lehmann bootstrap intervals")
	rootCmd.AddCommand(reportCmd)
}
