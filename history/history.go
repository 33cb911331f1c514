// Package history keeps an audit log of merge runs in a SQLite database:
// which files were merged, which were skipped and why, and the outcome.
package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusMerged = "merged"
	StatusFailed = "failed"
	StatusDryRun = "dry-run"
)

// ErrInvalidStatus is returned by Record for an unknown Run.Status.
var ErrInvalidStatus = errors.New("history: invalid run status")

// Run is one recorded invocation.
type Run struct {
	ID        int64         `json:"id" yaml:"id"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Inputs    []string      `json:"inputs" yaml:"inputs"`
	Output    string        `json:"output" yaml:"output"`
	Codec     string        `json:"codec,omitempty" yaml:"codec,omitempty"`
	Files     []string      `json:"files" yaml:"files"`
	Warnings  []string      `json:"warnings" yaml:"warnings"`
	FileCount int           `json:"file_count" yaml:"file_count"`
	PageCount int           `json:"page_count" yaml:"page_count"`
	Status    string        `json:"status" yaml:"status"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// DB is an open history database.
type DB struct {
	*sql.DB
	path string
}

// Open opens or creates the history database at path, creating its parent
// directory and schema as needed. Use ":memory:" for a throwaway database.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("history: creating directory for %s: %w", path, err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases and PRAGMAs consistent.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("history: initializing schema: %w", err)
	}
	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Record stores run with its files and warnings in a single transaction and
// returns the new run ID.
func (db *DB) Record(run Run) (int64, error) {
	switch run.Status {
	case StatusMerged, StatusFailed, StatusDryRun:
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, run.Status)
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	inputs, err := json.Marshal(nonNil(run.Inputs))
	if err != nil {
		return 0, fmt.Errorf("history: encoding inputs: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (started_at, inputs, output, codec, status, error, file_count, page_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.StartedAt.UnixNano(), string(inputs), run.Output, run.Codec, run.Status, run.Error,
		run.FileCount, run.PageCount, run.Duration.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("history: inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("history: run id: %w", err)
	}

	for i, path := range run.Files {
		if _, err := tx.Exec(`INSERT INTO run_files (run_id, position, path) VALUES (?, ?, ?)`, id, i, path); err != nil {
			return 0, fmt.Errorf("history: inserting file %s: %w", path, err)
		}
	}
	for i, msg := range run.Warnings {
		if _, err := tx.Exec(`INSERT INTO run_warnings (run_id, position, message) VALUES (?, ?, ?)`, id, i, msg); err != nil {
			return 0, fmt.Errorf("history: inserting warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("history: commit: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first, with their files and
// warnings. A limit of zero or less returns every run.
func (db *DB) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.Query(`
		SELECT run_id, started_at, inputs, output, codec, status, error, file_count, page_count, duration_ms
		FROM runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: listing runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedAt  int64
			inputs     string
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &startedAt, &inputs, &r.Output, &r.Codec, &r.Status, &r.Error,
			&r.FileCount, &r.PageCount, &durationMS); err != nil {
			rows.Close()
			return nil, fmt.Errorf("history: scanning run: %w", err)
		}
		r.StartedAt = time.Unix(0, startedAt)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		if err := json.Unmarshal([]byte(inputs), &r.Inputs); err != nil {
			rows.Close()
			return nil, fmt.Errorf("history: decoding inputs of run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("history: listing runs: %w", err)
	}
	rows.Close()

	// Child rows are loaded after the cursor is closed; the pool has a
	// single connection.
	for i := range runs {
		if runs[i].Files, err = db.strings(`SELECT path FROM run_files WHERE run_id = ? ORDER BY position`, runs[i].ID); err != nil {
			return nil, err
		}
		if runs[i].Warnings, err = db.strings(`SELECT message FROM run_warnings WHERE run_id = ? ORDER BY position`, runs[i].ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Delete removes a run and, through the foreign keys, its files and warnings.
func (db *DB) Delete(id int64) error {
	res, err := db.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("history: deleting run %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("history: run %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func (db *DB) strings(query string, id int64) ([]string, error) {
	rows, err := db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("history: loading run %d: %w", id, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("history: loading run %d: %w", id, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
