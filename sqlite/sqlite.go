// Package sqlite provides SQLite-based storage for scan results and the
// EDGAR filing index.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// Memory is the path of a private in-memory database.
const Memory = ":memory:"

// NewDB creates a new DB instance with the given path.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the index schema if
// needed. Scan result tables are created on demand.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, pragma := range db.pragmas() {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// pragmas returns the connection settings for the database. WAL is not
// available for in-memory databases.
func (db *DB) pragmas() []string {
	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if db.path != Memory {
		pragmas = append(pragmas,
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
		)
	}
	return pragmas
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// createSchema creates the index table. Scan result tables are created on
// demand by ResultService.EnsureTable.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS edgar_idx (
			cik TEXT NOT NULL,
			firm_name TEXT NOT NULL DEFAULT '',
			file_type TEXT NOT NULL,
			date TEXT NOT NULL,
			url TEXT NOT NULL,
			UNIQUE(cik, file_type, date, url)
		);

		CREATE INDEX IF NOT EXISTS idx_edgar_idx_file_type ON edgar_idx(file_type);
	`

	_, err := db.db.Exec(schema)
	return err
}
