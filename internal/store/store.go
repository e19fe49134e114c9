// Package store archives comparison runs.
package store

import (
	"context"
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/bakeoff/internal/model"
)

// Table names.
const (
	runsTable        = "bakeoff_runs"
	comparisonsTable = "bakeoff_comparisons"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
}

// Store persists bakeoff runs and their per-galaxy comparisons.
type Store interface {
	// SaveRun stores the run and its comparisons in one transaction.
	SaveRun(ctx context.Context, run *model.Run, comparisons []model.Comparison) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	ListComparisons(ctx context.Context, runID string) ([]model.Comparison, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the archive selected by driver.
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLite(dsn)
	case DriverPostgres:
		return NewPostgres(ctx, dsn, poolCfg)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// comparisonColumns is the column order of the comparisons table.
var comparisonColumns = []string{
	"run_id", "galaxy",
	"bic_left", "aicc_left", "sfrac_left", "rho_left",
	"bic_right", "aicc_right", "sfrac_right", "rho_right",
	"d_bic", "d_aicc", "d_sfrac", "d_rho",
}

// comparisonRow flattens c in comparisonColumns order. NaN is stored as
// NULL.
func comparisonRow(runID string, c model.Comparison) []any {
	return []any{
		runID, c.ID,
		nullable(c.Left.BIC), nullable(c.Left.AICc), nullable(c.Left.SFrac), nullable(c.Left.RhoAR1),
		nullable(c.Right.BIC), nullable(c.Right.AICc), nullable(c.Right.SFrac), nullable(c.Right.RhoAR1),
		nullable(c.DeltaBIC), nullable(c.DeltaAICc), nullable(c.DeltaSFrac), nullable(c.DeltaRho),
	}
}

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// nullFloat is a scan target that reads NULL as NaN.
type nullFloat struct{ v *float64 }

func (n *nullFloat) Scan(src any) error {
	switch x := src.(type) {
	case nil:
		*n.v = math.NaN()
	case float64:
		*n.v = x
	case int64:
		*n.v = float64(x)
	default:
		return eris.Errorf("store: cannot scan %T into float", src)
	}
	return nil
}

// comparisonTargets returns scan targets for a comparison row. Float fields
// start as NaN so a NULL the driver never hands to Scan still reads as NaN.
func comparisonTargets(c *model.Comparison) []any {
	nan := math.NaN()
	c.Left.BIC, c.Left.AICc, c.Left.SFrac, c.Left.RhoAR1 = nan, nan, nan, nan
	c.Right.BIC, c.Right.AICc, c.Right.SFrac, c.Right.RhoAR1 = nan, nan, nan, nan
	c.DeltaBIC, c.DeltaAICc, c.DeltaSFrac, c.DeltaRho = nan, nan, nan, nan
	return []any{
		&c.ID,
		&nullFloat{&c.Left.BIC}, &nullFloat{&c.Left.AICc}, &nullFloat{&c.Left.SFrac}, &nullFloat{&c.Left.RhoAR1},
		&nullFloat{&c.Right.BIC}, &nullFloat{&c.Right.AICc}, &nullFloat{&c.Right.SFrac}, &nullFloat{&c.Right.RhoAR1},
		&nullFloat{&c.DeltaBIC}, &nullFloat{&c.DeltaAICc}, &nullFloat{&c.DeltaSFrac}, &nullFloat{&c.DeltaRho},
	}
}

func finishComparison(c *model.Comparison) {
	c.Left.ID = c.ID
	c.Right.ID = c.ID
}

type scannable interface {
	Scan(dest ...any) error
}
