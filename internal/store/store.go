// Package store provides the SQLite persistence edges for voicelog:
// a cache of provider-fetched accounts (so parsing works when cal-proxy
// is down) and an append-only journal of emitted activity records.
//
// The parsing core owns no persisted state; everything here belongs to
// the external-collaborator side of the pipeline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/xits/voicelog/internal/registry"
	"github.com/xits/voicelog/internal/voicelog"
)

// DefaultDBPath is the default database location.
const DefaultDBPath = "~/.voicelog/voicelog.db"

// Activity is one journaled record with its delivery state.
type Activity struct {
	ID        string                `json:"id"`
	Type      voicelog.ActivityType `json:"type"`
	Account   string                `json:"account"`
	Contact   string                `json:"contact,omitempty"`
	Summary   string                `json:"summary"`
	RawText   string                `json:"raw_text"`
	Posted    bool                  `json:"posted"`
	CreatedAt time.Time             `json:"created_at"`
}

// Stats holds observability counters for the CLI.
type Stats struct {
	AccountCount  int64
	ActivityCount int64
	UnpostedCount int64
	DBSizeBytes   int64
}

// Config holds configuration for Open.
type Config struct {
	DBPath string
}

// Store is the persistence interface for the accounts cache and the
// activity journal.
type Store interface {
	// Accounts cache
	ReplaceAccounts(ctx context.Context, accounts []registry.Account, source string) error
	ListAccounts(ctx context.Context) ([]registry.Account, error)

	// Activity journal
	LogActivity(ctx context.Context, record *voicelog.ActivityRecord, posted bool) (string, error)
	MarkPosted(ctx context.Context, id string) error
	RecentActivities(ctx context.Context, limit int) ([]*Activity, error)

	// Observability
	Stats(ctx context.Context) (*Stats, error)

	Close() error
}

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// Open creates a SQLite-backed Store. Pass ":memory:" for tests.
func Open(cfg Config) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		cfg.DBPath = ExpandPath(DefaultDBPath)
	}

	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, dbPath: cfg.DBPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ReplaceAccounts atomically swaps the cached account list. A concurrent
// reader sees either the old or the new set, never a partial one.
func (s *SQLiteStore) ReplaceAccounts(ctx context.Context, accounts []registry.Account, source string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clearing accounts: %w", err)
	}

	now := time.Now().UTC()
	for _, a := range accounts {
		aliases, err := json.Marshal(a.Aliases)
		if err != nil {
			return fmt.Errorf("encoding aliases for %q: %w", a.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (name, aliases, source, fetched_at) VALUES (?, ?, ?, ?)`,
			a.Name, string(aliases), source, now,
		); err != nil {
			return fmt.Errorf("inserting account %q: %w", a.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing accounts: %w", err)
	}
	return nil
}

// ListAccounts returns the cached account list in name order.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]registry.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, aliases FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var out []registry.Account
	for rows.Next() {
		var a registry.Account
		var aliases string
		if err := rows.Scan(&a.Name, &aliases); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		if aliases != "" {
			if err := json.Unmarshal([]byte(aliases), &a.Aliases); err != nil {
				return nil, fmt.Errorf("decoding aliases for %q: %w", a.Name, err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LogActivity appends an emitted record to the journal and returns the
// journal entry ID.
func (s *SQLiteStore) LogActivity(ctx context.Context, record *voicelog.ActivityRecord, posted bool) (string, error) {
	if record == nil {
		return "", fmt.Errorf("record is nil")
	}

	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (id, activity_type, account, contact, summary, raw_text, posted, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(record.Type), record.Account, record.Contact,
		record.Summary, record.RawText, posted, record.CreatedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("inserting activity: %w", err)
	}
	return id, nil
}

// MarkPosted flips the delivery flag after a successful late delivery.
func (s *SQLiteStore) MarkPosted(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE activities SET posted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking activity posted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("activity %q not found", id)
	}
	return nil
}

// RecentActivities returns the newest journal entries, most recent first.
func (s *SQLiteStore) RecentActivities(ctx context.Context, limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, activity_type, account, contact, summary, raw_text, posted, created_at
		 FROM activities ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	var out []*Activity
	for rows.Next() {
		var a Activity
		var activityType string
		if err := rows.Scan(&a.ID, &activityType, &a.Account, &a.Contact,
			&a.Summary, &a.RawText, &a.Posted, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.Type = voicelog.ActivityType(activityType)
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Stats returns journal and cache counters plus the database size.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	queries := []struct {
		sql  string
		dest *int64
	}{
		{`SELECT COUNT(*) FROM accounts`, &stats.AccountCount},
		{`SELECT COUNT(*) FROM activities`, &stats.ActivityCount},
		{`SELECT COUNT(*) FROM activities WHERE posted = 0`, &stats.UnpostedCount},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("counting (%s): %w", q.sql, err)
		}
	}

	if s.dbPath != ":memory:" {
		if info, err := os.Stat(s.dbPath); err == nil {
			stats.DBSizeBytes = info.Size()
		}
	}
	return stats, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
