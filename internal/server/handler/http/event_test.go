package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wishkeep/wishkeep/internal/models"
)

// fakeEventService implements EventService for testing.
type fakeEventService struct {
	details    string
	detailsErr error
	setErr     error
	comingErr  error
	warnings   []string
	cancelErr  error

	confirmed []string
	declined  []string
	cancelled []string
	set       []string
}

func (f *fakeEventService) Details(ctx context.Context) (string, error) {
	return f.details, f.detailsErr
}
func (f *fakeEventService) SetDetails(ctx context.Context, text string) error {
	f.set = append(f.set, text)
	return f.setErr
}
func (f *fakeEventService) ConfirmArrival(ctx context.Context, username string) error {
	f.confirmed = append(f.confirmed, username)
	return f.comingErr
}
func (f *fakeEventService) DeclineArrival(ctx context.Context, username string) error {
	f.declined = append(f.declined, username)
	return f.comingErr
}
func (f *fakeEventService) CancelArrival(ctx context.Context, username string) ([]string, error) {
	f.cancelled = append(f.cancelled, username)
	return f.warnings, f.cancelErr
}

func TestEventHandler_Details(t *testing.T) {
	h := &EventHandler{EventService: &fakeEventService{details: "Saturday at six"}}
	rec := httptest.NewRecorder()
	h.Details(rec, httptest.NewRequest("GET", "/api/event", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out EventResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Details != "Saturday at six" {
		t.Errorf("details = %q", out.Details)
	}
}

func TestEventHandler_SetDetails(t *testing.T) {
	service := &fakeEventService{}
	h := &EventHandler{EventService: service}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/event", bytes.NewBufferString(`{"details":"Bring cake"}`))
	h.SetDetails(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(service.set) != 1 || service.set[0] != "Bring cake" {
		t.Errorf("unexpected sets: %+v", service.set)
	}
}

func TestEventHandler_ConfirmDecline(t *testing.T) {
	service := &fakeEventService{}
	h := &EventHandler{EventService: service}

	rec := httptest.NewRecorder()
	req := asPrincipal(httptest.NewRequest("POST", "/api/rsvp/confirm", nil), "nina", models.RoleUser)
	h.Confirm(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = asPrincipal(httptest.NewRequest("POST", "/api/rsvp/decline", nil), "nina", models.RoleUser)
	h.Decline(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("decline: expected 200, got %d", rec.Code)
	}

	if len(service.confirmed) != 1 || service.confirmed[0] != "nina" {
		t.Errorf("unexpected confirms: %+v", service.confirmed)
	}
	if len(service.declined) != 1 || service.declined[0] != "nina" {
		t.Errorf("unexpected declines: %+v", service.declined)
	}
}

func TestEventHandler_Confirm_NoPrincipal(t *testing.T) {
	h := &EventHandler{EventService: &fakeEventService{}}
	rec := httptest.NewRecorder()
	h.Confirm(rec, httptest.NewRequest("POST", "/api/rsvp/confirm", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestEventHandler_Cancel_ReportsWarnings(t *testing.T) {
	service := &fakeEventService{warnings: []string{`could not return "Bike": boom`}}
	h := &EventHandler{EventService: service}

	rec := httptest.NewRecorder()
	req := asPrincipal(httptest.NewRequest("POST", "/api/rsvp/cancel", nil), "nina", models.RoleUser)
	h.Cancel(rec, req)

	// Partial failure is a warning, not an error status.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out CancelResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != "ok" || len(out.Warnings) != 1 {
		t.Errorf("unexpected response: %+v", out)
	}
	if len(service.cancelled) != 1 || service.cancelled[0] != "nina" {
		t.Errorf("unexpected cancels: %+v", service.cancelled)
	}
}
