// Package history records analysis runs in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const runsTable = "autolysis_runs"

// Fixed-width UTC timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one analyze invocation.
type Run struct {
	ID                string
	Dataset           string
	Rows              int
	Columns           int
	NumericColumns    int
	Charts            int
	CorrelationStatus string
	OutliersStatus    string
	Narrative         bool
	OutputDir         string
	StartedAt         time.Time
	Duration          time.Duration
}

// Store is a SQLite-backed run log.
type Store struct {
	db *sql.DB
}

const migration = `
CREATE TABLE IF NOT EXISTS autolysis_runs (
	id                 TEXT PRIMARY KEY,
	dataset            TEXT NOT NULL,
	row_count          INTEGER NOT NULL,
	column_count       INTEGER NOT NULL,
	numeric_columns    INTEGER NOT NULL,
	charts             INTEGER NOT NULL,
	correlation_status TEXT NOT NULL,
	outliers_status    TEXT NOT NULL,
	narrative          INTEGER NOT NULL,
	output_dir         TEXT NOT NULL,
	started_at         TEXT NOT NULL,
	duration_ms        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_autolysis_runs_started_at ON autolysis_runs(started_at);
`

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrap(err, "history: create dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "history: open %s", path)
	}
	// Single connection avoids "database is locked".
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "history: configure")
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrapf(err, "history: create table %s", runsTable)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a run, assigning an ID when empty, and returns the ID used.
func (s *Store) Record(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO autolysis_runs (id, dataset, row_count, column_count, numeric_columns, charts,
			correlation_status, outliers_status, narrative, output_dir, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Dataset, r.Rows, r.Columns, r.NumericColumns, r.Charts,
		r.CorrelationStatus, r.OutliersStatus, r.Narrative, r.OutputDir,
		r.StartedAt.UTC().Format(timeLayout), r.Duration.Milliseconds())
	if err != nil {
		return "", eris.Wrap(err, "history: record run")
	}
	return r.ID, nil
}

// List returns the most recent runs first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, dataset, row_count, column_count, numeric_columns, charts,
		correlation_status, outliers_status, narrative, output_dir, started_at, duration_ms
		FROM autolysis_runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "history: list runs")
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r         Run
			started   string
			durMillis int64
		)
		if err := rows.Scan(&r.ID, &r.Dataset, &r.Rows, &r.Columns, &r.NumericColumns, &r.Charts,
			&r.CorrelationStatus, &r.OutliersStatus, &r.Narrative, &r.OutputDir, &started, &durMillis); err != nil {
			return nil, eris.Wrap(err, "history: scan run")
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, eris.Wrapf(err, "history: parse started_at of %s", r.ID)
		}
		r.Duration = time.Duration(durMillis) * time.Millisecond
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "history: iterate runs")
}
