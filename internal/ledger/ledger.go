// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger persists ingest run history in SQLite: one row per run
// with its final accounting, one row per source file with its outcome.
// The orchestrator uses it to resume interrupted ingests without
// re-parsing files a previous run already handled.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/organa/search-engine/pkg/types"
)

// File outcome statuses recorded per source file.
const (
	StatusParsed      = "parsed"
	StatusParseFailed = "parse_failed"
)

// Store manages the ingest ledger database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the ledger database at path, creating the schema
// and any missing parent directories.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			files INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			parse_failures INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			document_id TEXT,
			status TEXT NOT NULL,
			error TEXT,
			processed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun opens a new run row and returns its id.
func (s *Store) BeginRun(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at) VALUES (?)`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("recording run start: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}
	return id, nil
}

// FinishRun stores the run's final accounting.
func (s *Store) FinishRun(ctx context.Context, runID int64, sum types.IngestSummary) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, files = ?, succeeded = ?, failed = ?,
		 skipped = ?, parse_failures = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339),
		sum.Files, sum.Succeeded, sum.Failed, sum.Skipped, sum.ParseFailures, runID)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// RecordFile upserts the outcome for one source file.
func (s *Store) RecordFile(ctx context.Context, runID int64, path, documentID, status, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (path, run_id, document_id, status, error, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   run_id = excluded.run_id,
		   document_id = excluded.document_id,
		   status = excluded.status,
		   error = excluded.error,
		   processed_at = excluded.processed_at`,
		path, runID, documentID, status, errMsg,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording file %s: %w", path, err)
	}
	return nil
}

// AlreadyParsed reports whether a previous run parsed the file successfully.
func (s *Store) AlreadyParsed(ctx context.Context, path string) (bool, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM files WHERE path = ?`, path).Scan(&status)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("querying file %s: %w", path, err)
	}
	return status == StatusParsed, nil
}

// RunCount returns how many ingest runs the ledger has recorded.
func (s *Store) RunCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting runs: %w", err)
	}
	return n, nil
}
