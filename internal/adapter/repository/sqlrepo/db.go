package sqlrepo

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
	Driver string
}

// NewDB creates a new database connection.
// For postgres, dsn is in the format "host=localhost port=5432 user=postgres password=postgres dbname=investfolio sslmode=disable".
// For sqlite, dsn is a file path or ":memory:".
func NewDB(driver, dsn string) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// sqlite allows a single writer and ":memory:" is private to one connection
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, Driver: driver}, nil
}

// Migrate creates the tables if they do not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Decimals and dates are stored as TEXT so the same statements run on both drivers
var schema = []string{
	`CREATE TABLE IF NOT EXISTS holdings (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		ticker TEXT,
		asset_class TEXT NOT NULL DEFAULT '',
		quantity TEXT,
		value TEXT,
		annual_rate TEXT,
		register_date TEXT,
		estimated_value_on_create_date TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_holdings_owner ON holdings (owner_id)`,
	`CREATE TABLE IF NOT EXISTS investment_operations (
		id TEXT PRIMARY KEY,
		holding_id TEXT NOT NULL REFERENCES holdings (id) ON DELETE CASCADE,
		owner_id TEXT NOT NULL,
		kind TEXT NOT NULL CHECK (kind IN ('buy', 'sell')),
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		fees TEXT NOT NULL DEFAULT '0',
		executed_at TEXT NOT NULL,
		notes TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_operations_holding_executed ON investment_operations (holding_id, executed_at, created_at)`,
}
