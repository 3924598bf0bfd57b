package service

import (
	"context"
	"fmt"

	"github.com/wishkeep/wishkeep/internal/models"
)

// memStore is an in-memory stand-in for the persistence backend, following
// the same contract: keyed upserts, append-if-absent claims, remove-if-
// present returns.
type memStore struct {
	users   map[string]models.User
	order   []string // usernames in insertion order
	items   []models.Item
	details string
	nextID  int

	// failReturnFor makes Return fail for the given item ids, to exercise
	// best-effort batch semantics.
	failReturnFor map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[string]models.User),
		failReturnFor: make(map[string]bool),
	}
}

func (m *memStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) List(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.users[name])
	}
	return out, nil
}

func (m *memStore) Upsert(_ context.Context, u models.User) error {
	if _, ok := m.users[u.Username]; !ok {
		m.order = append(m.order, u.Username)
	}
	m.users[u.Username] = u
	return nil
}

func (m *memStore) Delete(_ context.Context, username string) error {
	delete(m.users, username)
	for i, name := range m.order {
		if name == username {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) Rename(_ context.Context, oldName, newName string) error {
	u, ok := m.users[oldName]
	if !ok {
		return models.ErrNotFound
	}
	if _, taken := m.users[newName]; taken {
		return models.ErrNameConflict
	}
	delete(m.users, oldName)
	u.Username = newName
	m.users[newName] = u
	for i, name := range m.order {
		if name == oldName {
			m.order[i] = newName
		}
	}
	for i := range m.items {
		for j, c := range m.items[i].ClaimedBy {
			if c == oldName {
				m.items[i].ClaimedBy[j] = newName
			}
		}
	}
	return nil
}

func (m *memStore) SetComing(_ context.Context, username string, coming bool) error {
	u, ok := m.users[username]
	if !ok {
		return models.ErrNotFound
	}
	u.Coming = coming
	m.users[username] = u
	return nil
}

func (m *memStore) ListItems(_ context.Context) ([]models.Item, error) {
	out := make([]models.Item, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id string) (*models.Item, error) {
	for _, it := range m.items {
		if it.ID == id {
			return &it, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memStore) Create(_ context.Context, name, details string) (string, error) {
	m.nextID++
	id := fmt.Sprintf("item-%d", m.nextID)
	m.items = append(m.items, models.Item{ID: id, Name: name, Details: details, ClaimedBy: []string{}})
	return id, nil
}

func (m *memStore) Update(_ context.Context, id, name, details string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Name = name
			m.items[i].Details = details
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *memStore) DeleteItem(_ context.Context, id string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) Claim(_ context.Context, id, username string) error {
	for i := range m.items {
		if m.items[i].ID != id {
			continue
		}
		if m.items[i].Claimed(username) {
			return nil
		}
		m.items[i].ClaimedBy = append(m.items[i].ClaimedBy, username)
	}
	return nil
}

func (m *memStore) Return(_ context.Context, id, username string) error {
	if m.failReturnFor[id] {
		return fmt.Errorf("simulated write failure")
	}
	for i := range m.items {
		if m.items[i].ID != id {
			continue
		}
		for j, c := range m.items[i].ClaimedBy {
			if c == username {
				m.items[i].ClaimedBy = append(m.items[i].ClaimedBy[:j], m.items[i].ClaimedBy[j+1:]...)
				break
			}
		}
	}
	return nil
}

func (m *memStore) RemoveClaimant(ctx context.Context, username string) error {
	for _, it := range m.items {
		if err := m.Return(ctx, it.ID, username); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) Get(_ context.Context) (string, error) {
	return m.details, nil
}

func (m *memStore) Set(_ context.Context, details string) error {
	m.details = details
	return nil
}

// itemRepo adapts memStore to the ItemRepository method names.
type itemRepo struct{ *memStore }

func (r itemRepo) List(ctx context.Context) ([]models.Item, error) { return r.ListItems(ctx) }
func (r itemRepo) Delete(ctx context.Context, id string) error     { return r.DeleteItem(ctx, id) }

// countingNotifier records broadcasts per collection.
type countingNotifier struct {
	broadcasts map[string]int
}

func newCountingNotifier() *countingNotifier {
	return &countingNotifier{broadcasts: make(map[string]int)}
}

func (n *countingNotifier) Broadcast(collection string) {
	n.broadcasts[collection]++
}
