// Package sqlite provides a SQLite-backed session store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cognicodeco/chainstream/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id           TEXT PRIMARY KEY,
	query        TEXT NOT NULL,
	answer       TEXT NOT NULL,
	transcript   TEXT NOT NULL,
	evidence     TEXT NOT NULL,
	status       TEXT NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP NOT NULL,
	duration_ms  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions (started_at DESC);
`

// Driver implements storage.Driver using SQLite via the
// github.com/mattn/go-sqlite3 driver (registered as "sqlite3").
type Driver struct {
	db *sql.DB
}

// NewDriver creates a new SQLite-backed session store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Put stores a session, overwriting any existing record with the same ID.
func (s *Driver) Put(ctx context.Context, session *storage.Session) error {
	if session == nil {
		return errors.New("cannot store nil session")
	}
	if session.ID == "" {
		return errors.New("cannot store session without an ID")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, query, answer, transcript, evidence, status, started_at, completed_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			query        = excluded.query,
			answer       = excluded.answer,
			transcript   = excluded.transcript,
			evidence     = excluded.evidence,
			status       = excluded.status,
			started_at   = excluded.started_at,
			completed_at = excluded.completed_at,
			duration_ms  = excluded.duration_ms`,
		session.ID,
		session.Query,
		session.Answer,
		session.Transcript,
		session.Evidence,
		session.Status,
		session.StartedAt.UTC(),
		session.CompletedAt.UTC(),
		session.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("inserting session %s: %w", session.ID, err)
	}

	return nil
}

// Get retrieves a session by ID.
func (s *Driver) Get(ctx context.Context, id string) (*storage.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, query, answer, transcript, evidence, status, started_at, completed_at, duration_ms
		FROM sessions WHERE id = ?`, id)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}

	return session, nil
}

// List returns all sessions, most recently started first.
func (s *Driver) List(ctx context.Context) ([]*storage.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, answer, transcript, evidence, status, started_at, completed_at, duration_ms
		FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*storage.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

// Close closes the underlying database.
func (s *Driver) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*storage.Session, error) {
	var (
		session     storage.Session
		startedAt   time.Time
		completedAt time.Time
	)

	err := row.Scan(
		&session.ID,
		&session.Query,
		&session.Answer,
		&session.Transcript,
		&session.Evidence,
		&session.Status,
		&startedAt,
		&completedAt,
		&session.DurationMs,
	)
	if err != nil {
		return nil, err
	}

	session.StartedAt = startedAt
	session.CompletedAt = completedAt
	return &session, nil
}
