// Package sqlite provides a SQLite-backed implementation of store.Store.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema when it does not exist yet
func (db *DB) RunMigrations() error {
	migration := `
CREATE TABLE IF NOT EXISTS properties (
    id TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    address TEXT,
    status TEXT NOT NULL CHECK(status IN ('ACTIVE', 'INACTIVE', 'SOLD')),
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contracts (
    id TEXT PRIMARY KEY,
    property_id TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT,
    monthly_rent TEXT NOT NULL,
    payment_day INTEGER NOT NULL,
    FOREIGN KEY (property_id) REFERENCES properties(id)
);
CREATE INDEX IF NOT EXISTS idx_property_contracts ON contracts(property_id);

CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    entity_type TEXT,
    entity_id TEXT,
    issue_date TEXT,
    amount TEXT,
    exercise_year INTEGER,
    aeat_box TEXT
);
CREATE INDEX IF NOT EXISTS idx_entity_documents ON documents(entity_type, entity_id);

CREATE TABLE IF NOT EXISTS fiscal_summaries (
    property_id TEXT NOT NULL,
    exercise_year INTEGER NOT NULL,
    income TEXT NOT NULL,
    expenses TEXT NOT NULL,
    result TEXT NOT NULL,
    computed_at TEXT NOT NULL,
    PRIMARY KEY (property_id, exercise_year),
    FOREIGN KEY (property_id) REFERENCES properties(id)
);

CREATE TABLE IF NOT EXISTS carry_forwards (
    property_id TEXT NOT NULL,
    origin_year INTEGER NOT NULL,
    amount TEXT NOT NULL,
    remaining TEXT NOT NULL,
    expiry_year INTEGER NOT NULL,
    PRIMARY KEY (property_id, origin_year),
    FOREIGN KEY (property_id) REFERENCES properties(id)
);
`

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
