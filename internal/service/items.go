package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/wishkeep/wishkeep/internal/models"
	"github.com/wishkeep/wishkeep/internal/watch"
)

// ItemRepository defines the persistence operations needed by the
// ItemService.
type ItemRepository interface {
	// List returns every item record, claim order preserved.
	List(ctx context.Context) ([]models.Item, error)
	// GetByID fetches a single item.
	GetByID(ctx context.Context, id string) (*models.Item, error)
	// Create inserts a new item and returns the store-assigned id.
	Create(ctx context.Context, name, details string) (string, error)
	// Update overwrites name and details.
	Update(ctx context.Context, id, name, details string) error
	// Delete removes the item record.
	Delete(ctx context.Context, id string) error
	// Claim appends username to the claim list if not already present.
	Claim(ctx context.Context, id, username string) error
	// Return removes username from the claim list if present.
	Return(ctx context.Context, id, username string) error
}

// ItemService implements the item registry: admin-managed create, update,
// and delete, and claim/return for signed-in users.
type ItemService struct {
	repo     ItemRepository
	notifier Notifier
}

// NewItemService constructs an ItemService. notifier may be nil.
func NewItemService(repo ItemRepository, notifier Notifier) *ItemService {
	return &ItemService{repo: repo, notifier: notifier}
}

// List returns every item record.
func (s *ItemService) List(ctx context.Context) ([]models.Item, error) {
	return s.repo.List(ctx)
}

// Create inserts a new item with an empty claim list and returns its
// store-assigned id. Returns models.ErrValidation for a blank name.
func (s *ItemService) Create(ctx context.Context, name, details string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", models.ErrValidation
	}
	id, err := s.repo.Create(ctx, name, details)
	if err != nil {
		return "", err
	}
	notify(s.notifier, watch.CollectionItems)
	return id, nil
}

// Update overwrites both name and details. A vanished item surfaces as
// models.ErrNotFound, which callers treat as a silent no-op.
func (s *ItemService) Update(ctx context.Context, id, name, details string) error {
	if err := s.repo.Update(ctx, id, name, details); err != nil {
		return err
	}
	notify(s.notifier, watch.CollectionItems)
	return nil
}

// Delete removes the item record.
func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	notify(s.notifier, watch.CollectionItems)
	return nil
}

// Claim records username's intent to buy the item. Idempotent: repeated
// claims by the same user are silently ignored.
func (s *ItemService) Claim(ctx context.Context, id, username string) error {
	if err := s.repo.Claim(ctx, id, username); err != nil {
		return err
	}
	notify(s.notifier, watch.CollectionItems)
	return nil
}

// Return removes username's claim on the item; a no-op if absent.
func (s *ItemService) Return(ctx context.Context, id, username string) error {
	if err := s.repo.Return(ctx, id, username); err != nil {
		return err
	}
	notify(s.notifier, watch.CollectionItems)
	return nil
}

// ClaimSummary renders the claimant queue of an item: each claimant as
// "{1-based position}/{total} {username}", joined with ", ".
func ClaimSummary(it models.Item) string {
	total := len(it.ClaimedBy)
	parts := make([]string, 0, total)
	for i, u := range it.ClaimedBy {
		parts = append(parts, fmt.Sprintf("%d/%d %s", i+1, total, u))
	}
	return strings.Join(parts, ", ")
}
