package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/wishkeep/wishkeep/internal/auth"
)

// EventService defines the event-details and RSVP operations required by
// the HTTP handlers.
type EventService interface {
	Details(ctx context.Context) (string, error)
	SetDetails(ctx context.Context, text string) error
	ConfirmArrival(ctx context.Context, username string) error
	DeclineArrival(ctx context.Context, username string) error
	CancelArrival(ctx context.Context, username string) ([]string, error)
}

// EventHandler handles HTTP requests for the event record and RSVP flows.
type EventHandler struct {
	EventService EventService
}

// EventResponse is the wire shape of the event-config record.
type EventResponse struct {
	Details string `json:"details"`
}

// Details handles GET /api/event.
func (h *EventHandler) Details(w http.ResponseWriter, r *http.Request) {
	details, err := h.EventService.Details(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(EventResponse{Details: details})
}

// SetDetails handles PUT /api/event, replacing the record wholesale.
func (h *EventHandler) SetDetails(w http.ResponseWriter, r *http.Request) {
	var req EventResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := h.EventService.SetDetails(r.Context(), req.Details); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Confirm handles POST /api/rsvp/confirm for the signed-in user.
func (h *EventHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.setComing(w, r, h.EventService.ConfirmArrival)
}

// Decline handles POST /api/rsvp/decline. The client ends the session
// afterwards; coming=false is persisted here.
func (h *EventHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.setComing(w, r, h.EventService.DeclineArrival)
}

// CancelResponse reports the outcome of a cancelled arrival, including
// per-item claim removals that failed.
type CancelResponse struct {
	Status   string   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`
}

// Cancel handles POST /api/rsvp/cancel: best-effort removal of the user's
// claims, then coming=false. Partial failures come back as warnings, not
// errors.
func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	warnings, err := h.EventService.CancelArrival(r.Context(), p.Name)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(CancelResponse{Status: "ok", Warnings: warnings})
}

func (h *EventHandler) setComing(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := op(r.Context(), p.Name); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
