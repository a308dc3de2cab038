// Package history provides an optional sqlite-backed ledger of provisioning
// runs and job invocations. When no history path is configured the rest of
// the system never touches this package, preserving the default "one log
// file per job, nothing else" persistence contract.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// EntryKind distinguishes ledger rows.
type EntryKind string

const (
	KindProvision EntryKind = "provision"
	KindLaunch    EntryKind = "launch"
)

// Entry is one ledger row: a provisioning run or a job invocation.
type Entry struct {
	ID         int64
	Kind       EntryKind
	RefID      string // provision run ID or job identifier
	Status     string
	ExitCode   int
	LogPath    string
	DurationMS int64
	CreatedAt  time.Time
}

// Store records entries in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (or creates) the ledger database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		ref_id TEXT NOT NULL,
		status TEXT NOT NULL,
		exit_code INTEGER NOT NULL DEFAULT 0,
		log_path TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ref_id ON runs(ref_id);
	CREATE INDEX IF NOT EXISTS idx_kind ON runs(kind);
	CREATE INDEX IF NOT EXISTS idx_created_at ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a new entry to the ledger.
func (s *Store) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (kind, ref_id, status, exit_code, log_path, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		string(e.Kind), e.RefID, e.Status, e.ExitCode, e.LogPath, e.DurationMS, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert run entry: %w", err)
	}
	return nil
}

// ByRef retrieves all entries for a provision run ID or job identifier.
func (s *Store) ByRef(ctx context.Context, refID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, ref_id, status, exit_code, log_path, duration_ms, created_at FROM runs WHERE ref_id = ? ORDER BY id",
		refID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Recent retrieves the most recent entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, ref_id, status, exit_code, log_path, duration_ms, created_at FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query run entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var kind string
		var createdUnix int64
		var logPath sql.NullString
		if err := rows.Scan(&e.ID, &kind, &e.RefID, &e.Status, &e.ExitCode, &logPath, &e.DurationMS, &createdUnix); err != nil {
			return nil, fmt.Errorf("scan run entry: %w", err)
		}
		e.Kind = EntryKind(kind)
		e.LogPath = logPath.String
		e.CreatedAt = time.Unix(createdUnix, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
