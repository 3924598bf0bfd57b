package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// eventKey is the fixed primary key of the single event-config row.
const eventKey = "event"

// PostgresEventRepository implements the single-row event-config record
// against a PostgreSQL database.
type PostgresEventRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresEventRepository creates a new PostgresEventRepository with the
// given database connection.
func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{DB: db}
}

// Get returns the stored event details, or an empty string if the record
// has never been written.
func (r *PostgresEventRepository) Get(ctx context.Context) (string, error) {
	var details string
	err := r.DB.QueryRowContext(ctx,
		`SELECT details FROM config_event WHERE id = $1`, eventKey,
	).Scan(&details)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("Get event: %w", err)
	}
	return details, nil
}

// Set replaces the stored event details wholesale.
func (r *PostgresEventRepository) Set(ctx context.Context, details string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO config_event (id, details) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET details = EXCLUDED.details
	`, eventKey, details)
	if err != nil {
		return fmt.Errorf("Set event: %w", err)
	}
	return nil
}
