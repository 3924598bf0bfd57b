// Package repository provides PostgreSQL persistence for the user, item,
// and event-config collections.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wishkeep/wishkeep/internal/models"
)

// PostgresUserRepository implements user-registry operations against a
// PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// GetByUsername fetches a single user record by exact username match.
// Returns models.ErrNotFound if no such user exists.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT username, password, role, coming FROM users WHERE username = $1
	`, username).Scan(&u.Username, &u.Password, &u.Role, &u.Coming)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return &u, nil
}

// List returns every user record.
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT username, password, role, coming FROM users ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("List users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.Coming); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Upsert inserts a user record or overwrites an existing one with the same
// username. Last write wins; no uniqueness error is raised.
func (r *PostgresUserRepository) Upsert(ctx context.Context, u models.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, password, role, coming)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET
			password = EXCLUDED.password,
			role = EXCLUDED.role,
			coming = EXCLUDED.coming
	`, u.Username, u.Password, u.Role, u.Coming)
	if err != nil {
		return fmt.Errorf("Upsert user: %w", err)
	}
	return nil
}

// Delete removes the user record. Deleting a missing user is a no-op.
func (r *PostgresUserRepository) Delete(ctx context.Context, username string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("Delete user: %w", err)
	}
	return nil
}

// Rename re-keys a user record and rewrites every claim-list occurrence of
// the old username within one transaction. Returns models.ErrNotFound if
// oldName does not exist and models.ErrNameConflict if newName is taken.
func (r *PostgresUserRepository) Rename(ctx context.Context, oldName, newName string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var taken bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, newName,
	).Scan(&taken)
	if err != nil {
		return fmt.Errorf("check conflict: %w", err)
	}
	if taken {
		return models.ErrNameConflict
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET username = $2 WHERE username = $1`, oldName, newName)
	if err != nil {
		return fmt.Errorf("rename user: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return models.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE items SET claimed_by = array_replace(claimed_by, $1, $2)
		WHERE $1 = ANY(claimed_by)
	`, oldName, newName)
	if err != nil {
		return fmt.Errorf("rename claims: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SetComing updates the RSVP state for the given user.
// Returns models.ErrNotFound if the user does not exist.
func (r *PostgresUserRepository) SetComing(ctx context.Context, username string, coming bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET coming = $2 WHERE username = $1`, username, coming)
	if err != nil {
		return fmt.Errorf("SetComing: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return models.ErrNotFound
	}
	return nil
}
