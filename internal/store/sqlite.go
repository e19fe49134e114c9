package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/bakeoff/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS bakeoff_runs (
	id              TEXT PRIMARY KEY,
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
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS bakeoff_comparisons (
	run_id      TEXT NOT NULL REFERENCES bakeoff_runs(id) ON DELETE CASCADE,
	galaxy      TEXT NOT NULL,
	bic_left    REAL,
	aicc_left   REAL,
	sfrac_left  REAL,
	rho_left    REAL,
	bic_right   REAL,
	aicc_right  REAL,
	sfrac_right REAL,
	rho_right   REAL,
	d_bic       REAL,
	d_aicc      REAL,
	d_sfrac     REAL,
	d_rho       REAL,
	PRIMARY KEY (run_id, galaxy)
);

CREATE INDEX IF NOT EXISTS idx_bakeoff_runs_created_at ON bakeoff_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_bakeoff_runs_status ON bakeoff_runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun assigns an ID and creation time when the run lacks them.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run, comparisons []model.Comparison) error {
	prepareRun(run)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bakeoff_runs (id, left_model, right_model, left_input, right_input, status, galaxies,
			left_bic_wins, right_bic_wins, left_aicc_wins, right_aicc_wins, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runArgs(run)...,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(comparisonColumns)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bakeoff_comparisons (`+strings.Join(comparisonColumns, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare comparison insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, c := range comparisons {
		if _, err := stmt.ExecContext(ctx, comparisonRow(run.ID, c)...); err != nil {
			return eris.Wrapf(err, "sqlite: insert comparison %s", c.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runSelectColumns+` FROM bakeoff_runs WHERE id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Errorf("sqlite: run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT ` + runSelectColumns + ` FROM bakeoff_runs`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) ListComparisons(ctx context.Context, runID string) ([]model.Comparison, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+strings.Join(comparisonColumns[1:], ", ")+` FROM bakeoff_comparisons WHERE run_id = ? ORDER BY d_bic IS NULL, d_bic, galaxy`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list comparisons %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Comparison
	for rows.Next() {
		var c model.Comparison
		if err := rows.Scan(comparisonTargets(&c)...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan comparison")
		}
		finishComparison(&c)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate comparisons")
}

// helpers

const runSelectColumns = `id, left_model, right_model, left_input, right_input, status, galaxies,
	left_bic_wins, right_bic_wins, left_aicc_wins, right_aicc_wins, created_at`

func prepareRun(run *model.Run) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = model.RunStatusComplete
	}
}

func runArgs(run *model.Run) []any {
	return []any{
		run.ID, run.Models.Left, run.Models.Right, run.LeftInput, run.RightInput,
		string(run.Status), run.Galaxies,
		run.Wins.LeftBIC, run.Wins.RightBIC, run.Wins.LeftAICc, run.Wins.RightAICc,
		run.CreatedAt,
	}
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var status string
	err := row.Scan(
		&r.ID, &r.Models.Left, &r.Models.Right, &r.LeftInput, &r.RightInput, &status, &r.Galaxies,
		&r.Wins.LeftBIC, &r.Wins.RightBIC, &r.Wins.LeftAICc, &r.Wins.RightAICc, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Status = model.RunStatus(status)
	return &r, nil
}
