package service

import (
	"context"
	"errors"

	"github.com/wishkeep/wishkeep/internal/models"
)

// CredentialsRepository defines the persistence operations required by the
// authentication service.
type CredentialsRepository interface {
	// GetByUsername fetches a user record by exact username match,
	// returning models.ErrNotFound if it does not exist.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService validates credentials against stored user records.
type AuthService struct {
	repo CredentialsRepository
}

// NewAuthService constructs an AuthService using the provided repository.
func NewAuthService(repo CredentialsRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Login checks the username/password pair against the stored record.
// Passwords are compared as-is, case-sensitively. An unknown username and a
// wrong password both yield models.ErrInvalidCredentials so the caller
// cannot tell which check failed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.Password != password {
		return nil, models.ErrInvalidCredentials
	}
	return &models.Session{Username: u.Username, Role: u.Role, Coming: u.Coming}, nil
}
