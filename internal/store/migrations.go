package store

import "fmt"

// migrate creates all tables if they don't exist. The schema is small
// enough that bootstrap DDL is the whole story; column evolution gets
// its own idempotent steps if it ever arrives.
func (s *SQLiteStore) migrate() error {
	statements := []string{
		// Cached account registry, replaced wholesale on sync.
		`CREATE TABLE IF NOT EXISTS accounts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL UNIQUE,
			aliases     TEXT NOT NULL DEFAULT '[]',
			source      TEXT NOT NULL DEFAULT '',
			fetched_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Append-only journal of emitted activity records.
		`CREATE TABLE IF NOT EXISTS activities (
			id             TEXT PRIMARY KEY,
			activity_type  TEXT NOT NULL,
			account        TEXT NOT NULL,
			contact        TEXT NOT NULL DEFAULT '',
			summary        TEXT NOT NULL,
			raw_text       TEXT NOT NULL,
			posted         INTEGER NOT NULL DEFAULT 0,
			created_at     TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_created_at
			ON activities(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_account
			ON activities(account)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}
	return nil
}
