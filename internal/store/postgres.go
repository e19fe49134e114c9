package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/bakeoff/internal/db"
	"github.com/sells-group/bakeoff/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	schema  string
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
	Schema   string `yaml:"schema" mapstructure:"schema"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	var schema string
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
		schema = poolCfg.Schema
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, schema: schema, closeFn: pool.Close}, nil
}

// table returns the sanitized, optionally schema-qualified table name.
func (s *PostgresStore) table(name string) string {
	if s.schema == "" {
		return pgx.Identifier{name}.Sanitize()
	}
	return pgx.Identifier{s.schema, name}.Sanitize()
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	left_model      TEXT NOT NULL,
	right_model     TEXT NOT NULL,
	left_input      TEXT NOT NULL,
	right_input     TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'running',
	galaxies        INTEGER NOT NULL DEFAULT 0,
	left_bic_wins   INTEGER NOT NULL DEFAULT 0,
	right_bic_wins  INTEGER NOT NULL DEFAULT 0,
	left_aicc_wins  INTEGER NOT NULL DEFAULT 0,
	right_aicc_wins INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS %[2]s (
	run_id      TEXT NOT NULL REFERENCES %[1]s(id) ON DELETE CASCADE,
	galaxy      TEXT NOT NULL,
	bic_left    DOUBLE PRECISION,
	aicc_left   DOUBLE PRECISION,
	sfrac_left  DOUBLE PRECISION,
	rho_left    DOUBLE PRECISION,
	bic_right   DOUBLE PRECISION,
	aicc_right  DOUBLE PRECISION,
	sfrac_right DOUBLE PRECISION,
	rho_right   DOUBLE PRECISION,
	d_bic       DOUBLE PRECISION,
	d_aicc      DOUBLE PRECISION,
	d_sfrac     DOUBLE PRECISION,
	d_rho       DOUBLE PRECISION,
	PRIMARY KEY (run_id, galaxy)
);

CREATE INDEX IF NOT EXISTS idx_bakeoff_runs_created_at ON %[1]s(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_bakeoff_runs_status ON %[1]s(status);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if s.schema != "" {
		if _, err := s.pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{s.schema}.Sanitize()); err != nil {
			return eris.Wrapf(err, "postgres: create schema %s", s.schema)
		}
	}
	_, err := s.pool.Exec(ctx, fmt.Sprintf(postgresMigration, s.table(runsTable), s.table(comparisonsTable)))
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveRun inserts the run row, then bulk-loads its comparisons with COPY,
// inside one transaction.
func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run, comparisons []model.Comparison) error {
	prepareRun(run)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO `+s.table(runsTable)+` (id, left_model, right_model, left_input, right_input, status, galaxies,
			left_bic_wins, right_bic_wins, left_aicc_wins, right_aicc_wins, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		runArgs(run)...,
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	rows := make([][]any, len(comparisons))
	for i, c := range comparisons {
		rows[i] = comparisonRow(run.ID, c)
	}
	if s.schema == "" {
		_, err = db.CopyFrom(ctx, tx, comparisonsTable, comparisonColumns, rows)
	} else {
		_, err = db.CopyFromSchema(ctx, tx, s.schema, comparisonsTable, comparisonColumns, rows)
	}
	if err != nil {
		_ = tx.Rollback(ctx)
		return eris.Wrapf(err, "postgres: copy comparisons for run %s", run.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrapf(err, "postgres: commit run %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+runSelectColumns+` FROM `+s.table(runsTable)+` WHERE id = $1`, runID)
	r, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: get run: not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + runSelectColumns + ` FROM ` + s.table(runsTable)
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) ListComparisons(ctx context.Context, runID string) ([]model.Comparison, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+strings.Join(comparisonColumns[1:], ", ")+` FROM `+s.table(comparisonsTable)+
			` WHERE run_id = $1 ORDER BY d_bic ASC NULLS LAST, galaxy`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list comparisons %s", runID)
	}
	defer rows.Close()

	var out []model.Comparison
	for rows.Next() {
		var c model.Comparison
		if err := rows.Scan(comparisonTargets(&c)...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan comparison")
		}
		finishComparison(&c)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate comparisons")
}
