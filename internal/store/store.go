package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store persists reading sessions, their attempts and per-level mastery.
type Store struct {
	db *sqlx.DB
}

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite has one writer; a single connection also keeps the pragmas
	// below in effect for every statement.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying handle for raw queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS lm_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		feedback_mode TEXT NOT NULL DEFAULT 'per_word',
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		estimated_level INTEGER,
		total_words INTEGER NOT NULL DEFAULT 0,
		correct_total INTEGER NOT NULL DEFAULT 0,
		accuracy REAL,
		speed REAL,
		session_score REAL,
		status TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS lm_sessions_user ON lm_sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS lm_session_words (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES lm_sessions(id) ON DELETE CASCADE,
		word_id INTEGER NOT NULL,
		expected_text TEXT NOT NULL,
		recognized_text TEXT NOT NULL,
		correct INTEGER NOT NULL,
		error_type TEXT,
		similarity REAL NOT NULL DEFAULT 0,
		sounds_alike INTEGER NOT NULL DEFAULT 0,
		response_time_ms INTEGER,
		visible_ms INTEGER,
		start_ms INTEGER,
		end_ms INTEGER,
		word_level INTEGER,
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS lm_session_words_session ON lm_session_words(session_id)`,
	`CREATE TABLE IF NOT EXISTS lm_mastery (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		mastery_1_10 INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(user_id, level)
	)`,
	`CREATE TABLE IF NOT EXISTS lm_disputes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_word_id INTEGER NOT NULL REFERENCES lm_session_words(id) ON DELETE CASCADE,
		session_id TEXT NOT NULL REFERENCES lm_sessions(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		expected_text TEXT NOT NULL,
		recognized_text TEXT NOT NULL,
		note TEXT,
		error_type TEXT,
		status TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'approved', 'rejected')),
		created_at INTEGER NOT NULL,
		reviewed_at INTEGER
	)`,
	`CREATE INDEX IF NOT EXISTS lm_disputes_status ON lm_disputes(status)`,
}

func migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. LAESEMASKINE_DB environment variable
// 2. $XDG_DATA_HOME/laesemaskine/laesemaskine.db
// 3. ~/.local/share/laesemaskine/laesemaskine.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("LAESEMASKINE_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "laesemaskine", "laesemaskine.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
