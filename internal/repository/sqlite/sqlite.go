// Package sqlite implements repository.Store on an embedded SQLite database.
//
// This is the persistent backend. SQLite lives inside the binary as a single
// file — no separate database server to run — which fits a single-server
// wellness app. modernc.org/sqlite is a pure Go translation of SQLite, so
// there is no CGo and cross-compilation stays painless.
//
// ID ALLOCATION:
// Identifiers are NOT database autoincrements. Each collection has a row in
// the counters table, bumped with a single atomic upsert-returning statement.
// This mirrors the in-memory backend's explicit allocator (one counter per
// collection here, one global counter there) and is the one place a
// transactional primitive is load-bearing: two concurrent creates must never
// observe the same counter value.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides the Store methods.
type DB struct {
	conn *sql.DB

	// now is swappable so tests can back-date log entries; production code
	// never touches it.
	now func() time.Time
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path or permissions problem
	// surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in flight — a web
	// server hits the database from many requests at once.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; every log table references
	// users(id), so turn them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn, now: time.Now}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS counters (
			name  TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS users (
			id           INTEGER PRIMARY KEY,
			email        TEXT NOT NULL UNIQUE,
			name         TEXT NOT NULL,
			external_uid TEXT NOT NULL UNIQUE,
			created_at   DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pain_logs (
			id         INTEGER PRIMARY KEY,
			user_id    INTEGER NOT NULL REFERENCES users(id),
			pain_level INTEGER NOT NULL,
			tags       TEXT NOT NULL DEFAULT '[]',
			notes      TEXT NOT NULL DEFAULT '',
			date       DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_pain_logs_user_date
			ON pain_logs(user_id, date DESC);

		CREATE TABLE IF NOT EXISTS mood_logs (
			id            INTEGER PRIMARY KEY,
			user_id       INTEGER NOT NULL REFERENCES users(id),
			mood          INTEGER NOT NULL,
			anxiety_level INTEGER NOT NULL,
			triggers      TEXT NOT NULL DEFAULT '[]',
			helpers       TEXT NOT NULL DEFAULT '[]',
			notes         TEXT NOT NULL DEFAULT '',
			date          DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_mood_logs_user_date
			ON mood_logs(user_id, date DESC);

		CREATE TABLE IF NOT EXISTS interventions (
			id             INTEGER PRIMARY KEY,
			user_id        INTEGER NOT NULL REFERENCES users(id),
			name           TEXT NOT NULL,
			frequency      TEXT NOT NULL,
			current_streak INTEGER NOT NULL DEFAULT 0,
			is_active      INTEGER NOT NULL DEFAULT 1,
			created_at     DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_interventions_user
			ON interventions(user_id, is_active);

		CREATE TABLE IF NOT EXISTS intervention_logs (
			id              INTEGER PRIMARY KEY,
			user_id         INTEGER NOT NULL REFERENCES users(id),
			intervention_id INTEGER NOT NULL REFERENCES interventions(id),
			pain_level      INTEGER NOT NULL,
			notes           TEXT NOT NULL DEFAULT '',
			date            DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_intervention_logs_parent
			ON intervention_logs(user_id, intervention_id, date DESC);

		CREATE TABLE IF NOT EXISTS chat_messages (
			id           INTEGER PRIMARY KEY,
			user_id      INTEGER NOT NULL REFERENCES users(id),
			content      TEXT NOT NULL,
			is_from_user INTEGER NOT NULL,
			timestamp    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chat_messages_user_ts
			ON chat_messages(user_id, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// nextID atomically allocates the next identifier for a collection.
//
// The upsert-with-RETURNING form is a single statement, so SQLite executes
// it atomically — two concurrent creates cannot read the same value. This is
// the monotonic allocator the interface contract requires, one counter per
// collection.
func (db *DB) nextID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1
		 RETURNING value`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("allocating %s id: %w", name, err)
	}
	return id, nil
}
