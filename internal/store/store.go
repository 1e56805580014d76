// Package store persists registration rows in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Entry is one stored row: one client of a submission with its vehicle.
type Entry struct {
	ID                int64
	SubmissionID      string
	Category          string
	ClientName        string
	ClientContact     string
	ClientNationality string
	CarType           string
	CarReg            string
	DriverName        string
	DriverPhone       string
	Activities        string
	GroupFile         string
	CreatedAt         time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("store: create directory: %w", err)
			}
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// NewSubmissionID returns a fresh identifier grouping the rows of one
// submission.
func NewSubmissionID() string {
	return uuid.NewString()
}

// Insert writes entries in one transaction. Entries without a submission id
// share a newly generated one, which is returned.
func (s *Store) Insert(ctx context.Context, entries []Entry) (string, error) {
	if len(entries) == 0 {
		return "", errors.New("store: no entries")
	}
	submissionID := entries[0].SubmissionID
	if submissionID == "" {
		submissionID = NewSubmissionID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (submission_id, category, client_name, client_contact, client_nationality,
			car_type, car_reg, driver_name, driver_phone, activities, group_file, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		created := e.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		_, err := stmt.ExecContext(ctx, submissionID, e.Category, e.ClientName, e.ClientContact,
			e.ClientNationality, e.CarType, e.CarReg, e.DriverName, e.DriverPhone, e.Activities,
			e.GroupFile, created.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return "", fmt.Errorf("store: insert entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store: commit: %w", err)
	}
	return submissionID, nil
}

// List returns up to limit entries, newest first. A limit of zero or less
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, submission_id, category, client_name, client_contact, client_nationality,
		car_type, car_reg, driver_name, driver_phone, activities, group_file, created_at
		FROM entries ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.ID, &e.SubmissionID, &e.Category, &e.ClientName, &e.ClientContact,
			&e.ClientNationality, &e.CarType, &e.CarReg, &e.DriverName, &e.DriverPhone,
			&e.Activities, &e.GroupFile, &created); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("store: parse created_at %q: %w", created, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}
