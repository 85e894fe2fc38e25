package db

import "fmt"

// migrate runs database migrations.
func (j *Journal) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS journal (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			kind       TEXT NOT NULL CHECK(kind IN ('create', 'update', 'move', 'delete', 'undo', 'redo')),
			event_id   TEXT NOT NULL DEFAULT '',
			outcome    TEXT NOT NULL,
			payload    TEXT NOT NULL DEFAULT '',
			applied_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_journal_session ON journal(session_id, seq);
	`

	if _, err := j.db.Exec(query); err != nil {
		return fmt.Errorf("creating journal table: %w", err)
	}

	return nil
}
