package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run statuses recorded in the ledger.
const (
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
	StatusFailed    = "failed"
)

// Run is one recorded build.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string
	Total        int
	CacheHits    int
	Attempted    int
	Succeeded    int
	Failed       int
	ErrorMessage string
}

// Store persists the build-run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run ledger database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts one completed run into the ledger.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, status, total, cache_hits, attempted, succeeded, failed, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Status,
		run.Total,
		run.CacheHits,
		run.Attempted,
		run.Succeeded,
		run.Failed,
		run.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first. A limit of zero or less
// returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, status, total, cache_hits, attempted, succeeded, failed, error_message
		FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt string
		)
		if err := rows.Scan(&run.ID, &startedAt, &finishedAt, &run.Status, &run.Total, &run.CacheHits, &run.Attempted, &run.Succeeded, &run.Failed, &run.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
