// Package sqlite provides SQLite-based persistent storage for the
// roster engine. Uses WAL mode and a single-connection pool so the
// database itself serializes writers (§5, §5.1) rather than needing a
// separate in-process lock manager.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/roster.db. Enables
// WAL mode, foreign keys, and a 5-second busy timeout, and serializes
// all writers through a single connection (§5.1).
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "roster.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer; one connection makes every transaction
	// serialize at the pool level, which is how §5.1 satisfies the
	// spec's row-locking requirement without a separate lock manager.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// OpenMemory opens an in-memory database for tests — same schema, no
// file on disk.
func OpenMemory() (*DB, error) {
	db, err := sql.Open("sqlite", "file::memory:?cache=shared&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

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

// migrate runs idempotent schema migrations (§6 "Persistence layout").
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id                 TEXT PRIMARY KEY,
			name               TEXT NOT NULL,
			email              TEXT NOT NULL DEFAULT '',
			title              TEXT NOT NULL DEFAULT '',
			skills_json        TEXT NOT NULL DEFAULT '[]',
			embeddings_blob    BLOB,
			productivity_score REAL NOT NULL DEFAULT 0,
			workload           INTEGER NOT NULL DEFAULT 0,
			active             BOOLEAN NOT NULL DEFAULT 1,
			created_at         INTEGER NOT NULL,
			updated_at         INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id                TEXT PRIMARY KEY,
			title             TEXT NOT NULL,
			description       TEXT NOT NULL DEFAULT '',
			priority          INTEGER NOT NULL,
			difficulty        INTEGER NOT NULL,
			required_skills_json TEXT NOT NULL DEFAULT '[]',
			embeddings_blob   BLOB,
			status            TEXT NOT NULL DEFAULT 'todo',
			creator_id        TEXT NOT NULL DEFAULT '',
			assignee_id       TEXT NOT NULL DEFAULT '',
			due_date          INTEGER,
			created_at        INTEGER NOT NULL,
			updated_at        INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id             TEXT PRIMARY KEY,
			task_id        TEXT NOT NULL,
			employee_id    TEXT NOT NULL,
			assigner_id    TEXT NOT NULL DEFAULT '',
			context_blob   BLOB NOT NULL,
			rework_count   INTEGER NOT NULL DEFAULT 0,
			notes          TEXT NOT NULL DEFAULT '',
			assigned_at    INTEGER NOT NULL,
			completed_at   INTEGER
		)`,
		// I1: at most one OPEN assignment per task. SQLite partial
		// unique indexes enforce this directly rather than in application
		// code.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_open_task
			ON assignments(task_id) WHERE completed_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_task ON assignments(task_id)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id               TEXT PRIMARY KEY,
			task_id          TEXT NOT NULL UNIQUE,
			employee_id      TEXT NOT NULL,
			r_completion     REAL NOT NULL,
			r_ontime         REAL NOT NULL,
			r_good_behaviour REAL NOT NULL,
			p_overdue        REAL NOT NULL,
			p_rework         REAL NOT NULL,
			p_failure        REAL NOT NULL,
			raw_reward       REAL NOT NULL,
			reward_value     REAL NOT NULL,
			overdue_days     INTEGER NOT NULL DEFAULT 0,
			context_blob     BLOB NOT NULL,
			created_at       INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bandit_state (
			arm_id       TEXT PRIMARY KEY,
			a_blob       BLOB NOT NULL,
			b_blob       BLOB NOT NULL,
			update_count INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by *sql.DB and *sql.Tx, letting Store methods run
// either directly or inside WithTx without duplicating SQL.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the execer for the current context: the transaction
// stashed there by WithTx, or the top-level *sql.DB otherwise.
func (d *DB) conn(ctx context.Context) execer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return d.db
}
