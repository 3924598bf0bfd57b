package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wishkeep/wishkeep/internal/auth"
	"github.com/wishkeep/wishkeep/internal/models"
)

// ItemService defines the item-registry operations required by the HTTP
// handlers.
type ItemService interface {
	List(ctx context.Context) ([]models.Item, error)
	Create(ctx context.Context, name, details string) (string, error)
	Update(ctx context.Context, id, name, details string) error
	Delete(ctx context.Context, id string) error
	Claim(ctx context.Context, id, username string) error
	Return(ctx context.Context, id, username string) error
}

// ItemHandler handles HTTP requests for the item registry.
type ItemHandler struct {
	ItemService ItemService
}

// List handles GET /api/items.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ItemService.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(items)
}

// ItemRequest represents the JSON payload for item create and update.
type ItemRequest struct {
	Name    string `json:"name"`
	Details string `json:"details"`
}

// Create handles POST /api/items and returns the store-assigned id.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	id, err := h.ItemService.Create(r.Context(), req.Name, req.Details)
	if errors.Is(err, models.ErrValidation) {
		http.Error(w, "item name required", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

// Update handles PUT /api/items/{id}, overwriting name and details. A
// vanished item yields 404, which the view treats as a silent no-op.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	err := h.ItemService.Update(r.Context(), id, req.Name, req.Details)
	if errors.Is(err, models.ErrNotFound) {
		http.Error(w, "no such item", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Delete handles DELETE /api/items/{id}. Confirmation happens at the view.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.ItemService.Delete(r.Context(), id); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Claim handles POST /api/items/{id}/claim for the signed-in user.
// Repeated claims are silently ignored.
func (h *ItemHandler) Claim(w http.ResponseWriter, r *http.Request) {
	h.mutateClaim(w, r, h.ItemService.Claim)
}

// Return handles POST /api/items/{id}/return for the signed-in user.
func (h *ItemHandler) Return(w http.ResponseWriter, r *http.Request) {
	h.mutateClaim(w, r, h.ItemService.Return)
}

func (h *ItemHandler) mutateClaim(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string) error) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")
	if err := op(r.Context(), id, p.Name); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
