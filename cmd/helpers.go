package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/bakeoff/internal/metrics"
	"github.com/sells-group/bakeoff/internal/store"
)

// stringFlag returns the flag value when it was set on the command line,
// otherwise the configured value.
func stringFlag(cmd *cobra.Command, name, configured string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return configured
}

func intFlag(cmd *cobra.Command, name string, configured int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return configured
}

func uint64Flag(cmd *cobra.Command, name string, configured uint64) uint64 {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetUint64(name)
		return v
	}
	return configured
}

func float64Flag(cmd *cobra.Command, name string, configured float64) float64 {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetFloat64(name)
		return v
	}
	return configured
}

func boolFlag(cmd *cobra.Command, name string, configured bool) bool {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return configured
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
		Schema:   cfg.Store.Schema,
	})
}

// flushMetrics writes rec to the configured textfile, if any.
func flushMetrics(rec *metrics.Recorder) error {
	path := cfg.Metrics.Textfile
	if path == "" {
		return nil
	}
	if err := rec.WriteTextfile(path); err != nil {
		return err
	}
	zap.L().Debug("wrote metrics textfile", zap.String("path", path))
	return nil
}
