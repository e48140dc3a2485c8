// Package store keeps a history of simulation runs in SQLite.
//
// Each run is stored under a random UUID together with its parameters (as
// JSON) and the numeric values behind both report tables, so runs can be
// compared later without re-simulating.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jaemoore/class-simulation/sim"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    iterations INTEGER NOT NULL,
    days INTEGER NOT NULL,
    params_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts_per_day (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    trial INTEGER NOT NULL,
    day INTEGER NOT NULL,
    average REAL NOT NULL,
    PRIMARY KEY (run_id, trial, day)
);

CREATE TABLE IF NOT EXISTS degree_per_student (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    student_id INTEGER NOT NULL,
    degree INTEGER NOT NULL,
    average REAL NOT NULL,
    PRIMARY KEY (run_id, student_id, degree)
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

// Run is the header row of a stored run. created_at is kept as unix
// nanoseconds so it orders numerically.
type Run struct {
	ID         string
	CreatedAt  time.Time
	Seed       int64
	Iterations int
	Days       int
	Params     sim.SimulationParams
}

// ResultStore persists runs to a SQLite database file.
type ResultStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenResultStore opens (creating if needed) the database at path and
// initializes the schema.
func OpenResultStore(ctx context.Context, path string) (*ResultStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &ResultStore{db: db, path: path, now: time.Now}, nil
}

// Path returns the database file location.
func (s *ResultStore) Path() string {
	return s.path
}

// SaveRun stores the run in a single transaction and returns its id.
func (s *ResultStore) SaveRun(ctx context.Context, results *sim.Results) (string, error) {
	params, err := json.Marshal(results.Params)
	if err != nil {
		return "", fmt.Errorf("failed to encode params: %w", err)
	}

	id := uuid.New().String()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, seed, iterations, days, params_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, s.now().UnixNano(), results.Params.Seed,
		len(results.Trials), len(results.Params.SwitchPlan()), string(params))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	contacts, err := tx.PrepareContext(ctx,
		`INSERT INTO contacts_per_day (run_id, trial, day, average) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare contacts insert: %w", err)
	}
	defer contacts.Close()
	for _, t := range results.Trials {
		for i, avg := range t.DailyAverages {
			if _, err := contacts.ExecContext(ctx, id, t.Trial+1, i+1, avg); err != nil {
				return "", fmt.Errorf("failed to insert contacts for trial %d: %w", t.Trial, err)
			}
		}
	}

	degrees, err := tx.PrepareContext(ctx,
		`INSERT INTO degree_per_student (run_id, student_id, degree, average) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare degree insert: %w", err)
	}
	defer degrees.Close()
	for _, a := range results.DegreeAverages() {
		for i, avg := range a.ByDegree {
			if _, err := degrees.ExecContext(ctx, id, a.StudentID, i+1, avg); err != nil {
				return "", fmt.Errorf("failed to insert degrees for student %d: %w", a.StudentID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	logrus.Debugf("stored run %s in %s", id, s.path)
	return id, nil
}

// ListRuns returns stored run headers, newest first.
func (s *ResultStore) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, seed, iterations, days, params_json
		FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			createdAt int64
			params    string
		)
		if err := rows.Scan(&r.ID, &createdAt, &r.Seed, &r.Iterations, &r.Days, &params); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.CreatedAt = time.Unix(0, createdAt).UTC()
		if err := json.Unmarshal([]byte(params), &r.Params); err != nil {
			return nil, fmt.Errorf("run %s: failed to decode params: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ContactsPerDay returns the stored per-day averages of a run, indexed
// [trial-1][day-1].
func (s *ResultStore) ContactsPerDay(ctx context.Context, runID string) ([][]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trial, day, average FROM contacts_per_day
		WHERE run_id = ? ORDER BY trial, day`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var out [][]float64
	for rows.Next() {
		var (
			trial, day int
			avg        float64
		)
		if err := rows.Scan(&trial, &day, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan contacts: %w", err)
		}
		for len(out) < trial {
			out = append(out, nil)
		}
		out[trial-1] = append(out[trial-1], avg)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *ResultStore) Close() error {
	return s.db.Close()
}
