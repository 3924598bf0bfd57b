package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    username TEXT PRIMARY KEY,
    password TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'user',
    coming BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    details TEXT NOT NULL DEFAULT '',
    claimed_by TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS config_event (
    id TEXT PRIMARY KEY,
    details TEXT NOT NULL DEFAULT ''
);

INSERT INTO users (username, password, role, coming)
VALUES ('admin', 'admin', 'admin', false)
ON CONFLICT DO NOTHING;
`

// InitPostgres opens the database, verifies the connection, and applies the
// schema. At least one admin account must exist, so a default one is seeded
// on first run.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
