package main

import (
	"bytes"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bakeoff/internal/bakeoff"
	"github.com/sells-group/bakeoff/internal/metrics"
	"github.com/sells-group/bakeoff/internal/report"
	"github.com/sells-group/bakeoff/internal/stratify"
	"github.com/sells-group/bakeoff/internal/wilsons"
)

var stratifyCmd = &cobra.Command{
	Use:   "stratify",
	Short: "Summarize ΔBIC/ΔAICc within tercile bins of Wilsons covariates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		inPath := stringFlag(cmd, "bakeoff", cfg.Inputs.Bakeoff)
		csvPath := stringFlag(cmd, "wilsons-csv", cfg.Inputs.WilsonsCSV)
		jsonPath := stringFlag(cmd, "wilsons-json", cfg.Inputs.WilsonsJSON)
		outPath := stringFlag(cmd, "out", cfg.Output.Strata)

		if err := cfg.Validate("stratify"); err != nil {
			return err
		}

		rec := metrics.New("stratify")
		done := rec.Stage("load")
		deltas, err := bakeoff.LoadDeltas(inPath)
		if err != nil {
			done()
			return eris.Wrap(err, "stratify")
		}
		ws, err := wilsons.Load(csvPath, jsonPath, wilsons.Options{Augment: true})
		done()
		if err != nil {
			return eris.Wrap(err, "stratify")
		}
		rec.Loaded("bakeoff", len(deltas), 0)
		rec.Loaded("wilsons", len(ws), 0)
		rec.Galaxies(len(deltas))

		done = rec.Stage("stratify")
		rows, err := stratify.Stratify(deltas, ws, stratify.Options{Covariates: cfg.Stratify.Covariates})
		done()
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := report.WriteStrataCSV(&buf, rows); err != nil {
			return eris.Wrap(err, "stratify")
		}
		if err := report.WriteFileAtomic(outPath, buf.Bytes()); err != nil {
			return eris.Wrap(err, "stratify")
		}
		zap.L().Info("strata written", zap.String("out", outPath), zap.Int("rows", len(rows)))

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), outPath)
		return flushMetrics(rec)
	},
}

func init() {
	stratifyCmd.Flags().String("bakeoff", "", "comparison table (default inputs.bakeoff)")
	stratifyCmd.Flags().String("wilsons-csv", "", "Wilsons fit table (default inputs.wilsons_csv)")
	stratifyCmd.Flags().String("wilsons-json", "", "Wilsons JSON sidecar (default inputs.wilsons_json)")
	stratifyCmd.Flags().String("out", "", "strata table to write (default output.strata)")
	rootCmd.AddCommand(stratifyCmd)
}
