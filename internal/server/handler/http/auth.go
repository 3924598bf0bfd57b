// Package http provides the HTTP handlers for the wish-list API: login,
// the user and item registries, the event/RSVP record, and the change feed.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wishkeep/wishkeep/internal/auth"
	"github.com/wishkeep/wishkeep/internal/models"
)

// AuthService defines the interface for authentication operations required
// by the HTTP handlers.
type AuthService interface {
	// Login validates the username/password pair and returns the session
	// identity, or models.ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*models.Session, error)
}

// AuthHandler handles HTTP requests for signing in.
type AuthHandler struct {
	// AuthService performs the underlying credential check.
	AuthService AuthService
	// TokenSecret signs the issued session tokens.
	TokenSecret string
	// TokenTTL bounds the session token lifetime.
	TokenTTL time.Duration
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and identity on success.
type LoginResponse struct {
	Token    string      `json:"token"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	Coming   bool        `json:"coming"`
}

// Login handles POST /api/login. An unknown username and a wrong password
// both yield the same 401 so the response does not reveal which check
// failed.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	sess, err := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	token, err := auth.IssueToken(h.TokenSecret, sess.Username, sess.Role, h.TokenTTL)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(LoginResponse{
		Token:    token,
		Username: sess.Username,
		Role:     sess.Role,
		Coming:   sess.Coming,
	})
}
