// Package store persists the working table and its event journal in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"misterlister/internal/table"
)

// StoreErrorType represents the type of store error.
type StoreErrorType string

const (
	OpenFailed    StoreErrorType = "OPEN_FAILED"
	SchemaFailed  StoreErrorType = "SCHEMA_FAILED"
	QueryFailed   StoreErrorType = "QUERY_FAILED"
	CorruptRecord StoreErrorType = "CORRUPT_RECORD"
)

// StoreError represents a failure reading or writing the table database.
type StoreError struct {
	Type    StoreErrorType
	Path    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Type, e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Type, e.Path, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store is an open table database.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS headers (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rows (
	position INTEGER PRIMARY KEY,
	id       TEXT NOT NULL UNIQUE,
	source   TEXT NOT NULL DEFAULT '',
	cells    TEXT NOT NULL,
	review   INTEGER NOT NULL DEFAULT 0,
	added_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS hidden_columns (
	col INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS events (
	seq    INTEGER PRIMARY KEY AUTOINCREMENT,
	id     TEXT NOT NULL,
	at     INTEGER NOT NULL,
	action TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_at ON events(at);
`

// Open opens or creates the database at path and migrates its schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &StoreError{Type: OpenFailed, Path: path, Message: "failed to create directory", Err: err}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Type: OpenFailed, Path: path, Message: "failed to open database", Err: err}
	}
	// one writer; the CLI and the watcher may share the file
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return &StoreError{Type: SchemaFailed, Path: s.path, Message: pragma, Err: err}
		}
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return &StoreError{Type: SchemaFailed, Path: s.path, Message: "failed to create schema", Err: err}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the table. A database that has never been saved yields an empty
// table with defaultHeaders.
func (s *Store) Load(ctx context.Context, defaultHeaders []string) (*table.Table, error) {
	headers, err := s.loadHeaders(ctx)
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		headers = defaultHeaders
	}
	t := table.New(headers)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, cells, review, added_at FROM rows ORDER BY position`)
	if err != nil {
		return nil, s.queryErr("failed to read rows", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r       table.Row
			cells   string
			review  int
			addedAt int64
		)
		if err := rows.Scan(&r.ID, &r.Source, &cells, &review, &addedAt); err != nil {
			return nil, s.queryErr("failed to scan row", err)
		}
		if err := json.Unmarshal([]byte(cells), &r.Cells); err != nil {
			return nil, &StoreError{Type: CorruptRecord, Path: s.path, Message: "row " + r.ID, Err: err}
		}
		r.Review = review != 0
		r.AddedAt = time.Unix(0, addedAt).UTC()
		t.Append(r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryErr("failed to read rows", err)
	}

	hidden, err := s.loadHidden(ctx)
	if err != nil {
		return nil, err
	}
	for _, col := range hidden {
		// columns beyond the header count are stale and dropped on next save
		_ = t.Hide(col)
	}

	return t, nil
}

func (s *Store) loadHeaders(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM headers ORDER BY position`)
	if err != nil {
		return nil, s.queryErr("failed to read headers", err)
	}
	defer rows.Close()

	var headers []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, s.queryErr("failed to scan header", err)
		}
		headers = append(headers, h)
	}
	return headers, rows.Err()
}

func (s *Store) loadHidden(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT col FROM hidden_columns ORDER BY col`)
	if err != nil {
		return nil, s.queryErr("failed to read hidden columns", err)
	}
	defer rows.Close()

	var cols []int
	for rows.Next() {
		var c int
		if err := rows.Scan(&c); err != nil {
			return nil, s.queryErr("failed to scan hidden column", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// Save replaces the stored table with t in one transaction.
func (s *Store) Save(ctx context.Context, t *table.Table) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.queryErr("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range []string{
		`DELETE FROM headers`,
		`DELETE FROM rows`,
		`DELETE FROM hidden_columns`,
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return s.queryErr("failed to clear table", err)
		}
	}

	for i, h := range t.Headers {
		if _, err = tx.ExecContext(ctx, `INSERT INTO headers (position, name) VALUES (?, ?)`, i, h); err != nil {
			return s.queryErr("failed to write header", err)
		}
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO rows (position, id, source, cells, review, added_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return s.queryErr("failed to prepare row insert", err)
	}
	defer insert.Close()

	for i, r := range t.Rows {
		cells, mErr := json.Marshal(r.Cells)
		if mErr != nil {
			err = mErr
			return &StoreError{Type: CorruptRecord, Path: s.path, Message: "row " + r.ID, Err: err}
		}
		review := 0
		if r.Review {
			review = 1
		}
		if _, err = insert.ExecContext(ctx, i, r.ID, r.Source, string(cells), review, r.AddedAt.UnixNano()); err != nil {
			return s.queryErr("failed to write row", err)
		}
	}

	for _, col := range t.HiddenColumns() {
		if _, err = tx.ExecContext(ctx, `INSERT INTO hidden_columns (col) VALUES (?)`, col); err != nil {
			return s.queryErr("failed to write hidden column", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return s.queryErr("failed to commit", err)
	}
	return nil
}

func (s *Store) queryErr(msg string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &StoreError{Type: QueryFailed, Path: s.path, Message: msg, Err: err}
}
