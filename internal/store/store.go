package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// currentVersion 2 revised the settings schema; older databases get their
// timer settings reset.
const currentVersion = 2

const (
	noticeReset   = "Settings were reset to defaults after an update. Your tasks and history were kept."
	noticeUnknown = "Settings were reset to defaults because the data was written by an unknown version."
	noticeMemory  = "Storage is unavailable; changes in this session will not be saved."
)

type Store struct {
	db     *sql.DB
	notice string
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

// Open is New with a fallback: when the file cannot be used it returns an
// in-memory store together with the original error, and the store carries a
// notice for the UI.
func Open(dbPath string) (*Store, error) {
	s, err := New(dbPath)
	if err == nil {
		return s, nil
	}
	mem, memErr := NewMemory()
	if memErr != nil {
		return nil, fmt.Errorf("open %s: %w (memory fallback: %v)", dbPath, err, memErr)
	}
	mem.notice = noticeMemory
	return mem, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// MigrationNotice returns the one-time advisory produced while opening the
// store, or "" when there is none.
func (s *Store) MigrationNotice() string {
	return s.notice
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version == currentVersion {
		return nil
	}

	if version > currentVersion {
		if err := s.resetTimerSettings(); err != nil {
			return err
		}
		s.notice = noticeUnknown
	} else {
		if version < 1 {
			if err := s.migrateV1(); err != nil {
				return err
			}
		}
		if version < 2 {
			if err := s.migrateV2(version > 0); err != nil {
				return err
			}
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS tasks (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		completed     INTEGER NOT NULL DEFAULT 0,
		estimated     INTEGER NOT NULL DEFAULT 1,
		actual        INTEGER NOT NULL DEFAULT 0,
		override      TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		completed_at  TEXT
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		mode        TEXT NOT NULL,
		minutes     INTEGER NOT NULL,
		task_id     TEXT,
		start_time  TEXT NOT NULL,
		end_time    TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_time);
	CREATE INDEX IF NOT EXISTS idx_sessions_task  ON sessions(task_id);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS app_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.seedSettings(false)
}

// migrateV2 replaces timer settings written before the settings revision.
// Fresh databases have nothing to replace.
func (s *Store) migrateV2(existing bool) error {
	if !existing {
		return nil
	}
	if err := s.resetTimerSettings(); err != nil {
		return err
	}
	s.notice = noticeReset
	return nil
}

// DefaultDBPath returns ~/.config/pomo/pomo.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "pomo", "pomo.db"), nil
}
