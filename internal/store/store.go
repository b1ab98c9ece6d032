// Package store persists valid form submissions in SQLite. A Store is a
// form.SubmitHandler, so it can be attached to a form instance or to the
// HTTP handler directly.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-autoform/pkg/form"
	"github.com/goliatone/go-autoform/pkg/schema"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// timestampLayout keeps a fixed width so created_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Record is a stored submission.
type Record struct {
	ID        string         `json:"id"`
	FormID    string         `json:"form_id"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"created_at"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger; defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store writes submissions to a SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ form.SubmitHandler = (*Store)(nil)

// Open creates or opens the database at dsn (a file path or any DSN accepted
// by go-sqlite3, e.g. "file::memory:?cache=shared") and applies the schema.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) migrate(ctx context.Context) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("store: %s: %w", pragma, err)
		}
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("store: read schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("store: set schema version: %w", err)
	}
	s.logger.Debug("submission store migrated", "version", schemaVersion)
	return nil
}

// HandleSubmission implements form.SubmitHandler.
func (s *Store) HandleSubmission(ctx context.Context, submission form.Submission) error {
	if s.db == nil {
		return ErrClosed
	}
	payload, err := json.Marshal(schema.ExportValues(submission.Values))
	if err != nil {
		return fmt.Errorf("store: encode submission %s: %w", submission.ID, err)
	}
	createdAt := submission.SubmittedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id, form_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		submission.ID, submission.FormID, string(payload), createdAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("store: insert submission %s: %w", submission.ID, err)
	}
	s.logger.Debug("submission stored", "form", submission.FormID, "submission", submission.ID)
	return nil
}

// List returns the submissions recorded for formID, oldest first. An empty
// formID lists every form.
func (s *Store) List(ctx context.Context, formID string) ([]Record, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	query := `SELECT id, form_id, payload, created_at FROM submissions`
	var args []any
	if formID != "" {
		query += ` WHERE form_id = ?`
		args = append(args, formID)
	}
	query += ` ORDER BY created_at, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list submissions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			record    Record
			payload   string
			createdAt string
		)
		if err := rows.Scan(&record.ID, &record.FormID, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan submission: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &record.Values); err != nil {
			return nil, fmt.Errorf("store: decode submission %s: %w", record.ID, err)
		}
		record.CreatedAt, err = time.Parse(timestampLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("store: parse timestamp of %s: %w", record.ID, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate submissions: %w", err)
	}
	return records, nil
}
