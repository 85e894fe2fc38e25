// Package db provides the SQLite command journal.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// MemoryPath opens a journal that lives only as long as the process.
const MemoryPath = ":memory:"

// ErrEmptySession is returned when an entry has no session id.
var ErrEmptySession = errors.New("journal entry needs a session id")

// Entry is one committed command.
type Entry struct {
	Seq       int64
	SessionID string
	Kind      string // create, update, move, delete, undo, redo
	EventID   string
	Outcome   string
	Payload   string // command input as JSON, empty for undo/redo/delete
	AppliedAt time.Time
}

// Journal is an append-only log of the commands applied in sessions.
type Journal struct {
	db *sql.DB
}

// New opens the journal at path and runs migrations.
func New(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	if path == MemoryPath {
		// Every connection to :memory: gets its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return j, nil
}

// Record appends e and sets its Seq. A zero AppliedAt is set to now.
func (j *Journal) Record(ctx context.Context, e *Entry) error {
	if e.SessionID == "" {
		return ErrEmptySession
	}
	if e.AppliedAt.IsZero() {
		e.AppliedAt = time.Now()
	}

	query := `
		INSERT INTO journal (session_id, kind, event_id, outcome, payload, applied_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := j.db.ExecContext(ctx, query,
		e.SessionID,
		e.Kind,
		e.EventID,
		e.Outcome,
		e.Payload,
		e.AppliedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	e.Seq = seq

	return nil
}

// List returns the entries of a session in the order they were recorded.
func (j *Journal) List(ctx context.Context, sessionID string) ([]Entry, error) {
	query := `
		SELECT seq, session_id, kind, event_id, outcome, payload, applied_at
		FROM journal
		WHERE session_id = ?
		ORDER BY seq
	`

	rows, err := j.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			appliedAt string
		)
		if err := rows.Scan(&e.Seq, &e.SessionID, &e.Kind, &e.EventID, &e.Outcome, &e.Payload, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.AppliedAt, err = time.Parse(time.RFC3339Nano, appliedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing applied at: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}

	return entries, nil
}

// Sessions returns the number of entries recorded per session id.
func (j *Journal) Sessions(ctx context.Context) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT session_id, COUNT(*) FROM journal GROUP BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sessions := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// Close releases database resources.
func (j *Journal) Close() error {
	return j.db.Close()
}
