package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bakeoff/internal/bakeoff"
	"github.com/sells-group/bakeoff/internal/model"
	"github.com/sells-group/bakeoff/internal/report"
	"github.com/sells-group/bakeoff/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived comparison runs",
	Long:  "Commands for listing, viewing, exporting and summarizing runs saved with compare --save.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := commandContext(cmd)
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(cmd.OutOrStdout(), runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs export --

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Write the comparison table of an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs export")
		}
		cs, err := st.ListComparisons(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "runs export")
		}

		outPath, _ := cmd.Flags().GetString("out")
		var buf bytes.Buffer
		if err := bakeoff.WriteComparisons(&buf, run.Models, cs); err != nil {
			return eris.Wrap(err, "runs export")
		}
		if err := report.WriteFileAtomic(outPath, buf.Bytes()); err != nil {
			return eris.Wrap(err, "runs export")
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote: %s (%d galaxies)\n", outPath, len(cs))
		return nil
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics over archived runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := commandContext(cmd)
		if err := cfg.Validate("runs"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		runs, err := st.ListRuns(ctx, store.RunFilter{Limit: 10000})
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatRunStats(cmd.OutOrStdout(), computeRunStats(runs))
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("status", "", "filter by run status (running, complete, failed)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsExportCmd.Flags().String("out", "bakeoff_export.csv", "comparison table to write")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// runStats holds aggregate statistics computed from a set of runs.
type runStats struct {
	Total     int
	Complete  int
	Failed    int
	Other     int
	Galaxies  int
	LeftBIC   int
	RightBIC  int
	LeftAICc  int
	RightAICc int
	Newest    time.Time
}

// computeRunStats computes aggregate statistics from a list of runs. Win
// totals count complete runs only.
func computeRunStats(runs []model.Run) runStats {
	var s runStats
	s.Total = len(runs)

	for _, r := range runs {
		if r.CreatedAt.After(s.Newest) {
			s.Newest = r.CreatedAt
		}
		switch r.Status {
		case model.RunStatusComplete:
			s.Complete++
			s.Galaxies += r.Galaxies
			s.LeftBIC += r.Wins.LeftBIC
			s.RightBIC += r.Wins.RightBIC
			s.LeftAICc += r.Wins.LeftAICc
			s.RightAICc += r.Wins.RightAICc
		case model.RunStatusFailed:
			s.Failed++
		default:
			s.Other++
		}
	}
	return s
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tMODELS\tSTATUS\tGALAXIES\tWINS_BIC\tWINS_AICC\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t--------\t--------\t---------\t-------")

	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s/%s\t%s\t%d\t%d:%d\t%d:%d\t%s\n",
			truncateID(r.ID),
			r.Models.Left, r.Models.Right,
			r.Status,
			r.Galaxies,
			r.Wins.LeftBIC, r.Wins.RightBIC,
			r.Wins.LeftAICc, r.Wins.RightAICc,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRunStats writes aggregate stats to w.
func formatRunStats(out io.Writer, s runStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Complete:\t%d\n", s.Complete)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "Other:\t%d\n", s.Other)
	if s.Complete > 0 {
		_, _ = fmt.Fprintf(w, "Galaxies compared:\t%d\n", s.Galaxies)
		_, _ = fmt.Fprintf(w, "Wins (BIC):\t%d:%d\n", s.LeftBIC, s.RightBIC)
		_, _ = fmt.Fprintf(w, "Wins (AICc):\t%d:%d\n", s.LeftAICc, s.RightAICc)
	}
	if !s.Newest.IsZero() {
		_, _ = fmt.Fprintf(w, "Latest run:\t%s\n", s.Newest.Format("2006-01-02 15:04"))
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
