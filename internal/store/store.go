// Package store handles SQLite persistence of report runs.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/verte-zerg/toptens/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so created_at sorts lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound reports an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Store wraps SQLite access for run history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create db directory")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, errors.Wrap(err, "migrate db")
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			input_path TEXT NOT NULL,
			occupation_out TEXT NOT NULL,
			state_out TEXT NOT NULL,
			total INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_entries (
			run_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			cases INTEGER NOT NULL,
			PRIMARY KEY (run_id, kind, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a run with the top entries of both rankings and returns
// the generated run ID.
func (s *Store) InsertRun(ctx context.Context, run model.Run, occupations, states []model.Count) (id string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, input_path, occupation_out, state_out, total)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.InputPath,
		run.OccupationOut,
		run.StateOut,
		run.Total,
	); err != nil {
		return "", errors.Wrap(err, "insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_entries (run_id, kind, position, label, cases) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, group := range []struct {
		kind   string
		ranked []model.Count
	}{
		{model.KindOccupation, occupations},
		{model.KindState, states},
	} {
		for i, c := range group.ranked {
			if _, err = stmt.ExecContext(ctx, run.ID, group.kind, i+1, c.Key, c.Count); err != nil {
				return "", errors.Wrap(err, "insert run entry")
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns recorded runs, newest first. A positive limit caps the result.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, input_path, occupation_out, state_out, total
		 FROM runs
		 ORDER BY created_at DESC, id ASC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var createdAt string
		if err := rows.Scan(&run.ID, &createdAt, &run.InputPath, &run.OccupationOut, &run.StateOut, &run.Total); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		run.CreatedAt = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ListRunEntries returns the stored entries of a run ordered by kind and rank.
func (s *Store) ListRunEntries(ctx context.Context, runID string) ([]model.RunEntry, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, errors.Wrapf(ErrRunNotFound, "run %s", runID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, position, label, cases
		 FROM run_entries
		 WHERE run_id = ?
		 ORDER BY kind ASC, position ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.RunEntry
	for rows.Next() {
		var e model.RunEntry
		if err := rows.Scan(&e.Kind, &e.Rank, &e.Key, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
