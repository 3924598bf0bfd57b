package service

import (
	"context"
	"fmt"

	"github.com/wishkeep/wishkeep/internal/models"
	"github.com/wishkeep/wishkeep/internal/watch"
)

// UserRepository defines the persistence operations needed by the
// UserService.
type UserRepository interface {
	// GetByUsername fetches a user record by exact username match.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// List returns every user record.
	List(ctx context.Context) ([]models.User, error)
	// Upsert inserts or overwrites the record with the same username.
	Upsert(ctx context.Context, u models.User) error
	// Delete removes the user record.
	Delete(ctx context.Context, username string) error
	// Rename re-keys the record and rewrites claim-list occurrences.
	Rename(ctx context.Context, oldName, newName string) error
	// SetComing updates the RSVP state.
	SetComing(ctx context.Context, username string, coming bool) error
}

// ClaimCascader strips a username from every item's claim list. Used for
// the user-delete cascade.
type ClaimCascader interface {
	RemoveClaimant(ctx context.Context, username string) error
}

// UserService implements the user registry: admin-managed create, delete,
// and rename, with claim-list cascades.
type UserService struct {
	repo     UserRepository
	cascade  ClaimCascader
	notifier Notifier
}

// NewUserService constructs a UserService. notifier may be nil.
func NewUserService(repo UserRepository, cascade ClaimCascader, notifier Notifier) *UserService {
	return &UserService{repo: repo, cascade: cascade, notifier: notifier}
}

// List returns every user record.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

// Create inserts a new user with role "user" and coming=false. An existing
// username is silently overwritten; last write wins. Returns
// models.ErrValidation if either field is empty.
func (s *UserService) Create(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return models.ErrValidation
	}
	err := s.repo.Upsert(ctx, models.User{
		Username: username,
		Password: password,
		Role:     models.RoleUser,
		Coming:   false,
	})
	if err != nil {
		return err
	}
	notify(s.notifier, watch.CollectionUsers)
	return nil
}

// Delete removes the user record and strips the username from every item's
// claim list. The two steps are not atomic: once the record is gone the
// deletion has succeeded, so a failed cascade comes back as a warning and
// the stale claim entries wait for the cleaner.
func (s *UserService) Delete(ctx context.Context, username string) ([]string, error) {
	if err := s.repo.Delete(ctx, username); err != nil {
		return nil, err
	}
	notify(s.notifier, watch.CollectionUsers)

	var warnings []string
	if err := s.cascade.RemoveClaimant(ctx, username); err != nil {
		warnings = append(warnings, fmt.Sprintf("could not release claims of %q: %v", username, err))
	}
	notify(s.notifier, watch.CollectionItems)
	return warnings, nil
}

// Rename re-keys the user and rewrites every claim-list occurrence of the
// old name. Returns models.ErrValidation for an empty or unchanged new
// name, models.ErrNameConflict if it is taken, and models.ErrNotFound if
// the old name does not exist.
func (s *UserService) Rename(ctx context.Context, oldName, newName string) error {
	if newName == "" || newName == oldName {
		return models.ErrValidation
	}
	if err := s.repo.Rename(ctx, oldName, newName); err != nil {
		return err
	}
	notify(s.notifier, watch.CollectionUsers)
	notify(s.notifier, watch.CollectionItems)
	return nil
}
