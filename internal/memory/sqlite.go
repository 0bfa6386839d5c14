// Package memory persists project task graphs in SQLite.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/josephgoksu/taskgraph/internal/task"
	_ "modernc.org/sqlite"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "taskgraph.db"

// SQLiteStore implements task.Repository.
//
// The pool is capped at one connection. SQLite allows a single writer anyway,
// and it keeps ":memory:" databases and per-connection pragmas consistent.
// Consequently code running inside Atomic must only use the Writer it was
// handed, never the store itself.
type SQLiteStore struct {
	tables
	db       *sql.DB
	basePath string
}

var _ task.Repository = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database under basePath.
// Pass ":memory:" for a throwaway in-memory database.
func NewSQLiteStore(basePath string) (*SQLiteStore, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		dbPath = filepath.Join(basePath, DBFileName)
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{tables: tables{q: db}, db: db, basePath: basePath}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		progress INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		priority TEXT NOT NULL,
		complexity INTEGER NOT NULL DEFAULT 1,
		estimated_hours REAL,
		actual_hours REAL,
		parent_task_id TEXT REFERENCES tasks(id) ON DELETE CASCADE,
		assigned_agent TEXT,
		started_at TEXT,
		completed_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(project_id, status);

	CREATE TABLE IF NOT EXISTS task_dependencies (
		task_id TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		depends_on TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
		created_at TEXT NOT NULL,
		PRIMARY KEY (task_id, depends_on)
	);
	CREATE INDEX IF NOT EXISTS idx_task_deps_depends_on ON task_dependencies(depends_on);

	CREATE TABLE IF NOT EXISTS blueprints (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		version INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (project_id, version)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Atomic runs fn inside one transaction. Any error from fn rolls back every
// write made through w.
func (s *SQLiteStore) Atomic(ctx context.Context, fn func(w task.Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&tables{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// View runs fn inside a transaction that is always rolled back. The pool has
// one connection, so no other unit of work can commit while fn reads.
func (s *SQLiteStore) View(ctx context.Context, fn func(r task.Reader) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return fn(&tables{q: tx})
}

// Path returns the database location, or ":memory:".
func (s *SQLiteStore) Path() string {
	if s.basePath == ":memory:" {
		return s.basePath
	}
	return filepath.Join(s.basePath, DBFileName)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
