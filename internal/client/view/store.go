package view

import (
	"context"

	"github.com/wishkeep/wishkeep/internal/models"
)

// Store is the persistence contract the view renders against. The remote
// API client and the local SQLite store both satisfy it; which one backs a
// session is a startup flag, not a view concern.
type Store interface {
	// Login validates credentials and returns the session identity, or
	// models.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*models.Session, error)
	// Logout discards any session state the store holds.
	Logout()

	Users(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, username, password string) error
	// DeleteUser removes the record and releases the user's claims;
	// claim releases that fail after the record is gone come back as
	// warnings, not an error.
	DeleteUser(ctx context.Context, username string) ([]string, error)
	RenameUser(ctx context.Context, oldName, newName string) error

	Items(ctx context.Context) ([]models.Item, error)
	CreateItem(ctx context.Context, name, details string) error
	UpdateItem(ctx context.Context, id, name, details string) error
	DeleteItem(ctx context.Context, id string) error
	ClaimItem(ctx context.Context, id, username string) error
	ReturnItem(ctx context.Context, id, username string) error

	EventDetails(ctx context.Context) (string, error)
	SetEventDetails(ctx context.Context, text string) error
	ConfirmArrival(ctx context.Context, username string) error
	DeclineArrival(ctx context.Context, username string) error
	// CancelArrival returns the user's claims best-effort and reverts
	// coming to false; failed removals come back as warnings.
	CancelArrival(ctx context.Context, username string) ([]string, error)
}
