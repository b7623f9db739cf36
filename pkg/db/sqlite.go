package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrEmptyPath is returned when a SQLite client has no database file.
var ErrEmptyPath = errors.New("sqlite path is required")

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteClient wraps a single-connection sql.DB on a local SQLite file.
type SQLiteClient struct {
	db   *sql.DB
	path string
}

// NewSQLiteClient constructs an unconnected SQLite client for path.
func NewSQLiteClient(path string) *SQLiteClient {
	return &SQLiteClient{path: path}
}

// Connect opens the database with foreign keys enforced, creating the parent
// directory of a file database when needed.
func (c *SQLiteClient) Connect(ctx context.Context) error {
	if c.path == "" {
		return ErrEmptyPath
	}
	if c.path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(c.path), err)
		}
	}

	db, err := sql.Open("sqlite", c.path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	// one connection: an in-memory database exists per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping sqlite: %w", err)
	}

	c.db = db
	return nil
}

// Close closes the underlying sql.DB handle.
func (c *SQLiteClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB exposes the underlying handle.
func (c *SQLiteClient) DB() *sql.DB {
	return c.db
}

// Dialect reports DialectSQLite.
func (c *SQLiteClient) Dialect() Dialect {
	return DialectSQLite
}
