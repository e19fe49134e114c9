package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bakeoff/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bakeoff",
	Short: "EGR vs ΛCDM rotation-curve model comparison",
	Long:  "Joins per-galaxy fit summaries of two models, bins ΔBIC on the Kass–Raftery scale, tests the deltas and writes CSV, Markdown, LaTeX and HTML reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
