// Package sqlite provides SQLite-based persistent storage for Lingvo.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/lingvo.db.
// Enables WAL mode, foreign keys, and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "lingvo.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Accounts + progression state. All engine-mutated fields live on
		// this one row so a lesson completion is a single UPDATE.
		`CREATE TABLE IF NOT EXISTS users (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			email               TEXT NOT NULL UNIQUE,
			name                TEXT NOT NULL,
			password_hash       TEXT NOT NULL,
			level               TEXT NOT NULL DEFAULT 'Beginner',
			xp                  INTEGER NOT NULL DEFAULT 0,
			coins               INTEGER NOT NULL DEFAULT 0,
			age                 INTEGER NOT NULL DEFAULT 0,
			goal                TEXT NOT NULL DEFAULT '',
			is_pro              BOOLEAN NOT NULL DEFAULT 0,
			avatar_url          TEXT NOT NULL DEFAULT '',
			streak              INTEGER NOT NULL DEFAULT 0,
			old_streak          INTEGER NOT NULL DEFAULT 0,
			streak_freezes      INTEGER NOT NULL DEFAULT 0,
			last_streak_update  INTEGER NOT NULL,
			last_streak_lost_at INTEGER,
			last_repair_used_at INTEGER,
			hearts              INTEGER NOT NULL DEFAULT 5,
			last_heart_reset    INTEGER NOT NULL,
			last_login          INTEGER,
			created_at          INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_xp ON users(xp)`,

		// Best-attempt ledger: one row per (user, lesson).
		`CREATE TABLE IF NOT EXISTS progress (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      INTEGER NOT NULL,
			lesson_id    TEXT NOT NULL,
			score        INTEGER NOT NULL,
			completed_at INTEGER NOT NULL,
			UNIQUE(user_id, lesson_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_user ON progress(user_id)`,

		// Course catalog: course → module → lesson.
		`CREATE TABLE IF NOT EXISTS courses (
			id          TEXT PRIMARY KEY,
			level       TEXT NOT NULL UNIQUE,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS modules (
			id        TEXT PRIMARY KEY,
			course_id TEXT NOT NULL,
			title     TEXT NOT NULL,
			position  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_modules_course ON modules(course_id)`,
		`CREATE TABLE IF NOT EXISTS lessons (
			id         TEXT PRIMARY KEY,
			module_id  TEXT NOT NULL,
			title      TEXT NOT NULL,
			type       TEXT NOT NULL DEFAULT 'vocabulary',
			content    TEXT NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lessons_module ON lessons(module_id)`,

		// Study groups + chat.
		`CREATE TABLE IF NOT EXISTS groups (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			level       TEXT NOT NULL DEFAULT 'All Levels',
			max_members INTEGER NOT NULL DEFAULT 10,
			is_public   BOOLEAN NOT NULL DEFAULT 1,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS group_members (
			user_id   INTEGER NOT NULL,
			group_id  INTEGER NOT NULL,
			joined_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, group_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_members_group ON group_members(group_id)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			group_id   INTEGER NOT NULL,
			user_id    INTEGER NOT NULL,
			content    TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_group ON messages(group_id, created_at)`,

		// AI tutoring notes, written by the background advice worker.
		`CREATE TABLE IF NOT EXISTS tutor_advice (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			text       TEXT NOT NULL,
			fallback   BOOLEAN NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_advice_user ON tutor_advice(user_id, created_at)`,

		// Coin audit trail. The users.coins column stays the source of
		// truth; this records how every balance got where it is.
		`CREATE TABLE IF NOT EXISTS wallet_ledger (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL,
			kind       TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			reason     TEXT NOT NULL,
			balance    INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wallet_user ON wallet_ledger(user_id, created_at)`,
	}

	for i, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// ─── Scan helpers ───────────────────────────────────────────────────────────

func nullableUnix(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.Unix()
}

func unixPtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0)
	return &t
}

func unixOrZero(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return time.Unix(n.Int64, 0)
}
