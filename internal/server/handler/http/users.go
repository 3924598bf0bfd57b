package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wishkeep/wishkeep/internal/auth"
	"github.com/wishkeep/wishkeep/internal/models"
)

// UserService defines the user-registry operations required by the HTTP
// handlers.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, username, password string) error
	Delete(ctx context.Context, username string) ([]string, error)
	Rename(ctx context.Context, oldName, newName string) error
}

// UserHandler handles HTTP requests for the user registry.
type UserHandler struct {
	UserService UserService

	// TokenSecret and TokenTTL let Rename issue a replacement session
	// token when a user renames themself.
	TokenSecret string
	TokenTTL    time.Duration
}

// UserResponse is the wire shape of a user record. Passwords never leave
// the server.
type UserResponse struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	Coming   bool        `json:"coming"`
}

// List handles GET /api/users and returns every record.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserResponse{Username: u.Username, Role: u.Role, Coming: u.Coming})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// CreateUserRequest represents the JSON payload for user creation.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Create handles POST /api/users. An existing username is silently
// overwritten; empty fields are rejected.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	err := h.UserService.Create(r.Context(), req.Username, req.Password)
	if errors.Is(err, models.ErrValidation) {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// DeleteUserResponse confirms a delete. A failed claim cascade after the
// record is gone comes back as warnings, not as an error.
type DeleteUserResponse struct {
	Status   string   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
}

// Delete handles DELETE /api/users/{username}. The interactive confirmation
// happens at the view before the request is sent.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	warnings, err := h.UserService.Delete(r.Context(), username)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(DeleteUserResponse{Status: "ok", Warnings: warnings})
}

// RenameUserRequest represents the JSON payload for a rename.
type RenameUserRequest struct {
	NewName string `json:"newName"`
}

// RenameUserResponse confirms a rename. Token is set only when the caller
// renamed themself: the old token's subject no longer exists in the
// registry, so a replacement is issued for the new name.
type RenameUserResponse struct {
	Status   string `json:"status"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

// Rename handles POST /api/users/{username}/rename. Admins may rename
// anyone; other users only themselves.
func (h *UserHandler) Rename(w http.ResponseWriter, r *http.Request) {
	oldName := chi.URLParam(r, "username")

	p, ok := auth.FromContext(r.Context())
	if !ok || (!p.IsAdmin() && p.Name != oldName) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req RenameUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.UserService.Rename(r.Context(), oldName, req.NewName)
	switch {
	case errors.Is(err, models.ErrValidation):
		http.Error(w, "invalid new name", http.StatusBadRequest)
	case errors.Is(err, models.ErrNameConflict):
		http.Error(w, "name already taken", http.StatusConflict)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "no such user", http.StatusNotFound)
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		resp := RenameUserResponse{Status: "ok", Username: req.NewName}
		if p.Name == oldName {
			token, err := auth.IssueToken(h.TokenSecret, req.NewName, p.Role, h.TokenTTL)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			resp.Token = token
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
