package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/wishkeep/wishkeep/internal/models"
)

// PostgresItemRepository implements item-registry operations against a
// PostgreSQL database. Claim lists are stored as a text array; append,
// remove, and replace run as single conditional statements so each
// per-item mutation is atomic.
type PostgresItemRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresItemRepository creates a new PostgresItemRepository with the
// given database connection.
func NewPostgresItemRepository(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{DB: db}
}

// List returns every item record, claim order preserved.
func (r *PostgresItemRepository) List(ctx context.Context) ([]models.Item, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, details, claimed_by FROM items ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("List items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		var claimed pq.StringArray
		if err := rows.Scan(&it.ID, &it.Name, &it.Details, &claimed); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		it.ClaimedBy = []string(claimed)
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByID fetches a single item. Returns models.ErrNotFound if missing.
func (r *PostgresItemRepository) GetByID(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	var claimed pq.StringArray
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, details, claimed_by FROM items WHERE id = $1
	`, id).Scan(&it.ID, &it.Name, &it.Details, &claimed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	it.ClaimedBy = []string(claimed)
	return &it, nil
}

// Create inserts a new item with an empty claim list and returns the
// store-assigned identifier.
func (r *PostgresItemRepository) Create(ctx context.Context, name, details string) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO items (id, name, details, claimed_by) VALUES ($1, $2, $3, '{}')
	`, id, name, details)
	if err != nil {
		return "", fmt.Errorf("Create item: %w", err)
	}
	return id, nil
}

// Update overwrites name and details. Returns models.ErrNotFound if the
// item no longer exists.
func (r *PostgresItemRepository) Update(ctx context.Context, id, name, details string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE items SET name = $2, details = $3 WHERE id = $1`, id, name, details)
	if err != nil {
		return fmt.Errorf("Update item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes the item record. Deleting a missing item is a no-op.
func (r *PostgresItemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete item: %w", err)
	}
	return nil
}

// Claim appends username to the item's claim list only if not already
// present. Repeated claims by the same user are silently ignored, as is a
// claim on a vanished item.
func (r *PostgresItemRepository) Claim(ctx context.Context, id, username string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE items SET claimed_by = array_append(claimed_by, $2)
		WHERE id = $1 AND NOT ($2 = ANY(claimed_by))
	`, id, username)
	if err != nil {
		return fmt.Errorf("Claim: %w", err)
	}
	return nil
}

// Return removes username from the item's claim list if present; no-op
// otherwise.
func (r *PostgresItemRepository) Return(ctx context.Context, id, username string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE items SET claimed_by = array_remove(claimed_by, $2) WHERE id = $1
	`, id, username)
	if err != nil {
		return fmt.Errorf("Return: %w", err)
	}
	return nil
}

// RemoveClaimant strips username from every item's claim list. Used by the
// user-delete cascade.
func (r *PostgresItemRepository) RemoveClaimant(ctx context.Context, username string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE items SET claimed_by = array_remove(claimed_by, $1)
		WHERE $1 = ANY(claimed_by)
	`, username)
	if err != nil {
		return fmt.Errorf("RemoveClaimant: %w", err)
	}
	return nil
}
