package service

import (
	"context"
	"fmt"

	"github.com/wishkeep/wishkeep/internal/watch"
)

// EventRepository defines the persistence operations for the single-row
// event-config record.
type EventRepository interface {
	// Get returns the stored event details.
	Get(ctx context.Context) (string, error)
	// Set replaces the stored event details wholesale.
	Set(ctx context.Context, details string) error
}

// RSVPRepository is the slice of the user registry the event service
// needs: updating a user's attendance state.
type RSVPRepository interface {
	SetComing(ctx context.Context, username string, coming bool) error
}

// EventService implements the event-details record and the RSVP flows.
type EventService struct {
	events   EventRepository
	users    RSVPRepository
	items    ItemRepository
	notifier Notifier
}

// NewEventService constructs an EventService. notifier may be nil.
func NewEventService(events EventRepository, users RSVPRepository, items ItemRepository, notifier Notifier) *EventService {
	return &EventService{events: events, users: users, items: items, notifier: notifier}
}

// Details returns the event description shown to all users.
func (s *EventService) Details(ctx context.Context) (string, error) {
	return s.events.Get(ctx)
}

// SetDetails replaces the event description wholesale.
func (s *EventService) SetDetails(ctx context.Context, text string) error {
	if err := s.events.Set(ctx, text); err != nil {
		return err
	}
	notify(s.notifier, watch.CollectionEvent)
	return nil
}

// ConfirmArrival marks the user as coming.
func (s *EventService) ConfirmArrival(ctx context.Context, username string) error {
	if err := s.users.SetComing(ctx, username, true); err != nil {
		return err
	}
	notify(s.notifier, watch.CollectionUsers)
	return nil
}

// DeclineArrival marks the user as not coming. The caller then ends the
// session and returns to the login screen.
func (s *EventService) DeclineArrival(ctx context.Context, username string) error {
	if err := s.users.SetComing(ctx, username, false); err != nil {
		return err
	}
	notify(s.notifier, watch.CollectionUsers)
	return nil
}

// CancelArrival returns every item the user has claimed and then marks them
// as not coming; the session stays active and the caller shows the RSVP
// prompt again. The claim removals run per item with no rollback: a failed
// removal is reported in the returned warnings and the batch continues.
func (s *EventService) CancelArrival(ctx context.Context, username string) ([]string, error) {
	var warnings []string

	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if !it.Claimed(username) {
			continue
		}
		if err := s.items.Return(ctx, it.ID, username); err != nil {
			warnings = append(warnings, fmt.Sprintf("could not return %q: %v", it.Name, err))
		}
	}
	notify(s.notifier, watch.CollectionItems)

	if err := s.users.SetComing(ctx, username, false); err != nil {
		return warnings, err
	}
	notify(s.notifier, watch.CollectionUsers)
	return warnings, nil
}
