package sqlite

import (
	"database/sql"
	"fmt"
)

const (
	TableConversations = "conversations"
	TableMessages      = "messages"
)

// EnsureSchema creates all required tables and indexes.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + TableConversations + ` (
			thread_id     TEXT PRIMARY KEY,
			message_count INTEGER NOT NULL DEFAULT 0,
			created_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ` + TableMessages + ` (
			thread_id TEXT NOT NULL,
			seq       INTEGER NOT NULL,
			role      TEXT NOT NULL,
			payload   TEXT NOT NULL,
			PRIMARY KEY (thread_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_updated_at ON ` + TableConversations + `(updated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
