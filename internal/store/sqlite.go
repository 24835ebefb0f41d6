package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryDSN opens a private in-memory database that lives as long as the
// process, matching the session-only lifetime of the task board.
const MemoryDSN = ":memory:"

// DB wraps the SQLite connection with initialization logic.
type DB struct {
	*sql.DB
}

// Open creates or opens the SQLite database at the given path and runs
// schema initialization. File databases use WAL mode; MemoryDSN skips the
// directory and journal setup.
func Open(dbPath string) (*DB, error) {
	if dbPath == "" {
		dbPath = MemoryDSN
	}

	dsn := dbPath + "?_busy_timeout=5000&_foreign_keys=ON"
	if !isMemoryPath(dbPath) {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection: SQLite handles one writer at a time, and every
	// connection to :memory: would otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{db}, nil
}

func isMemoryPath(path string) bool {
	return path == MemoryDSN || strings.HasPrefix(path, "file::memory:")
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS tasks (
  id TEXT PRIMARY KEY,
  position INTEGER NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending',
  due_date TEXT NOT NULL DEFAULT '',
  subtasks TEXT NOT NULL DEFAULT '[]',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// TaskCount returns the total number of tasks in the database.
func (db *DB) TaskCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&count)
	return count, err
}
