// Package localstore backs the client with a SQLite file, so a household
// can run the whole thing on one machine without a server.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wishkeep/wishkeep/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	password TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	coming INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	details TEXT NOT NULL DEFAULT '',
	claimed_by TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS config_event (
	id TEXT PRIMARY KEY,
	details TEXT NOT NULL DEFAULT ''
);
INSERT OR IGNORE INTO users (username, password, role, coming) VALUES ('admin', 'admin', 'admin', 0);
`

const eventKey = "event"

// Store satisfies the client Store contract over a local SQLite database.
// Claim lists are kept as JSON arrays in a TEXT column.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite allows one writer, and the in-memory DSN needs a single
	// connection to see one database at all.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Login validates credentials against the local users table.
func (s *Store) Login(ctx context.Context, username, password string) (*models.Session, error) {
	var u models.User
	var coming int
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password, role, coming FROM users WHERE username = ?`, username).
		Scan(&u.Username, &u.Password, &u.Role, &coming)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.Password != password {
		return nil, models.ErrInvalidCredentials
	}
	return &models.Session{Username: u.Username, Role: u.Role, Coming: coming != 0}, nil
}

// Logout is a no-op, local sessions hold no server state.
func (s *Store) Logout() {}

func (s *Store) Users(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, password, role, coming FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var coming int
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &coming); err != nil {
			return nil, err
		}
		u.Coming = coming != 0
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts or overwrites a user record, matching the server's
// last-write-wins behavior.
func (s *Store) CreateUser(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return models.ErrValidation
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password, role, coming) VALUES (?, ?, 'user', 0)
		 ON CONFLICT (username) DO UPDATE SET
			password = excluded.password,
			role = excluded.role,
			coming = excluded.coming`,
		username, password)
	return err
}

// DeleteUser removes the record and releases every claim the user held.
// Once the record is gone the delete has succeeded; claim releases that
// fail afterwards are reported as warnings.
func (s *Store) DeleteUser(ctx context.Context, username string) ([]string, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username); err != nil {
		return nil, err
	}
	items, err := s.Items(ctx)
	if err != nil {
		return []string{fmt.Sprintf("could not release claims of %q: %v", username, err)}, nil
	}
	var warnings []string
	for _, it := range items {
		if !it.Claimed(username) {
			continue
		}
		if err := s.ReturnItem(ctx, it.ID, username); err != nil {
			warnings = append(warnings, fmt.Sprintf("could not return %q: %v", it.Name, err))
		}
	}
	return warnings, nil
}

// RenameUser renames the record and rewrites the name inside every claim
// list, all in one transaction.
func (s *Store) RenameUser(ctx context.Context, oldName, newName string) error {
	if oldName == "" || newName == "" || oldName == newName {
		return models.ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, newName).Scan(&exists); err != nil {
		return err
	}
	if exists > 0 {
		return models.ErrNameConflict
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET username = ? WHERE username = ?`, newName, oldName)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return models.ErrNotFound
	}

	rows, err := tx.QueryContext(ctx, `SELECT id, claimed_by FROM items`)
	if err != nil {
		return err
	}
	type patch struct {
		id      string
		claimed []string
	}
	var patches []patch
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return err
		}
		claimed, err := decodeClaims(raw)
		if err != nil {
			rows.Close()
			return err
		}
		changed := false
		for i, c := range claimed {
			if c == oldName {
				claimed[i] = newName
				changed = true
			}
		}
		if changed {
			patches = append(patches, patch{id: id, claimed: claimed})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, p := range patches {
		raw, err := json.Marshal(p.claimed)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE items SET claimed_by = ? WHERE id = ?`, string(raw), p.id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) Items(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, details, claimed_by FROM items ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var it models.Item
		var raw string
		if err := rows.Scan(&it.ID, &it.Name, &it.Details, &raw); err != nil {
			return nil, err
		}
		if it.ClaimedBy, err = decodeClaims(raw); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) CreateItem(ctx context.Context, name, details string) error {
	if strings.TrimSpace(name) == "" {
		return models.ErrValidation
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, name, details, claimed_by) VALUES (?, ?, ?, '[]')`,
		uuid.NewString(), name, details)
	return err
}

// UpdateItem overwrites name and details without validating them, the
// same as the remote update path.
func (s *Store) UpdateItem(ctx context.Context, id, name, details string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET name = ?, details = ? WHERE id = ?`, name, details, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	return err
}

// ClaimItem appends the user to the item's claim list unless already there.
func (s *Store) ClaimItem(ctx context.Context, id, username string) error {
	return s.mutateClaims(ctx, id, func(claimed []string) []string {
		for _, c := range claimed {
			if c == username {
				return claimed
			}
		}
		return append(claimed, username)
	})
}

// ReturnItem removes the user from the item's claim list.
func (s *Store) ReturnItem(ctx context.Context, id, username string) error {
	return s.mutateClaims(ctx, id, func(claimed []string) []string {
		kept := claimed[:0]
		for _, c := range claimed {
			if c != username {
				kept = append(kept, c)
			}
		}
		return kept
	})
}

func (s *Store) EventDetails(ctx context.Context) (string, error) {
	var details string
	err := s.db.QueryRowContext(ctx,
		`SELECT details FROM config_event WHERE id = ?`, eventKey).Scan(&details)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return details, err
}

func (s *Store) SetEventDetails(ctx context.Context, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO config_event (id, details) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET details = excluded.details`,
		eventKey, text)
	return err
}

func (s *Store) ConfirmArrival(ctx context.Context, username string) error {
	return s.setComing(ctx, username, true)
}

func (s *Store) DeclineArrival(ctx context.Context, username string) error {
	return s.setComing(ctx, username, false)
}

// CancelArrival returns the user's claims item by item. Failures do not
// stop the batch, each one becomes a warning; coming is reverted last.
func (s *Store) CancelArrival(ctx context.Context, username string) ([]string, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	var warnings []string
	for _, it := range items {
		if !it.Claimed(username) {
			continue
		}
		if err := s.ReturnItem(ctx, it.ID, username); err != nil {
			warnings = append(warnings, fmt.Sprintf("could not return %q: %v", it.Name, err))
		}
	}
	return warnings, s.setComing(ctx, username, false)
}

func (s *Store) setComing(ctx context.Context, username string, coming bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET coming = ? WHERE username = ?`, boolInt(coming), username)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// mutateClaims reads, rewrites and stores one item's claim list inside a
// transaction. SQLite has no array columns, so the JSON round trip stands
// in for an atomic array update.
func (s *Store) mutateClaims(ctx context.Context, id string, fn func([]string) []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT claimed_by FROM items WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		// Vanished items make claim and return silent no-ops.
		return nil
	}
	if err != nil {
		return err
	}
	claimed, err := decodeClaims(raw)
	if err != nil {
		return err
	}
	out, err := json.Marshal(fn(claimed))
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET claimed_by = ? WHERE id = ?`, string(out), id); err != nil {
		return err
	}
	return tx.Commit()
}

func decodeClaims(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var claimed []string
	if err := json.Unmarshal([]byte(raw), &claimed); err != nil {
		return nil, fmt.Errorf("corrupt claim list: %w", err)
	}
	if claimed == nil {
		claimed = []string{}
	}
	return claimed, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
