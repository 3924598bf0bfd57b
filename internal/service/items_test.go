package service

import (
	"context"
	"errors"
	"testing"

	"github.com/wishkeep/wishkeep/internal/models"
)

func TestCreateItem_BlankName(t *testing.T) {
	store := newMemStore()
	svc := NewItemService(itemRepo{store}, nil)

	for _, name := range []string{"", "   ", "\t"} {
		if _, err := svc.Create(context.Background(), name, "details"); !errors.Is(err, models.ErrValidation) {
			t.Errorf("name %q: got %v; want ErrValidation", name, err)
		}
	}
	if len(store.items) != 0 {
		t.Errorf("registry mutated by rejected creates: %+v", store.items)
	}
}

func TestCreateItem_EmptyClaimList(t *testing.T) {
	store := newMemStore()
	svc := NewItemService(itemRepo{store}, nil)

	id, err := svc.Create(context.Background(), "Bike", "red")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Error("expected a store-assigned id")
	}
	it, err := store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("item not stored: %v", err)
	}
	if it.Name != "Bike" || it.Details != "red" {
		t.Errorf("unexpected item: %+v", it)
	}
	if len(it.ClaimedBy) != 0 {
		t.Errorf("new item must start unclaimed, got %+v", it.ClaimedBy)
	}
}

func TestClaim_Idempotent(t *testing.T) {
	store := newMemStore()
	svc := NewItemService(itemRepo{store}, nil)
	ctx := context.Background()
	id, _ := store.Create(ctx, "Bike", "red")

	if err := svc.Claim(ctx, id, "nina"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if err := svc.Claim(ctx, id, "nina"); err != nil {
		t.Fatalf("repeated claim must be silently ignored, got %v", err)
	}

	it, _ := store.GetByID(ctx, id)
	occurrences := 0
	for _, u := range it.ClaimedBy {
		if u == "nina" {
			occurrences++
		}
	}
	if occurrences != 1 {
		t.Errorf("expected exactly one occurrence of nina, got %d (%+v)", occurrences, it.ClaimedBy)
	}
}

func TestReturn_TwiceIsNoop(t *testing.T) {
	store := newMemStore()
	svc := NewItemService(itemRepo{store}, nil)
	ctx := context.Background()
	id, _ := store.Create(ctx, "Bike", "red")
	store.Claim(ctx, id, "mama")

	if err := svc.Return(ctx, id, "nina"); err != nil {
		t.Fatalf("returning an absent user must be a no-op, got %v", err)
	}
	if err := svc.Return(ctx, id, "nina"); err != nil {
		t.Fatalf("second return must also be a no-op, got %v", err)
	}
	it, _ := store.GetByID(ctx, id)
	if len(it.ClaimedBy) != 1 || it.ClaimedBy[0] != "mama" {
		t.Errorf("unrelated claims disturbed: %+v", it.ClaimedBy)
	}
}

func TestUpdate_VanishedItem(t *testing.T) {
	store := newMemStore()
	svc := NewItemService(itemRepo{store}, nil)

	err := svc.Update(context.Background(), "ghost", "Bike", "red")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("got %v; want ErrNotFound", err)
	}
}

func TestClaimSummary_PositionTotal(t *testing.T) {
	cases := []struct {
		name string
		item models.Item
		want string
	}{
		{
			"three claimants",
			models.Item{ClaimedBy: []string{"A", "B", "C"}},
			"1/3 A, 2/3 B, 3/3 C",
		},
		{
			"single claimant",
			models.Item{ClaimedBy: []string{"mama"}},
			"1/1 mama",
		},
		{
			"unclaimed",
			models.Item{},
			"",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClaimSummary(tc.item); got != tc.want {
				t.Errorf("ClaimSummary = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestScenario_BikeClaimQueue(t *testing.T) {
	store := newMemStore()
	svc := NewItemService(itemRepo{store}, nil)
	ctx := context.Background()

	// Admin creates the item.
	id, err := svc.Create(ctx, "Bike", "red")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	it, _ := store.GetByID(ctx, id)
	if len(it.ClaimedBy) != 0 {
		t.Fatalf("expected empty claim list, got %+v", it.ClaimedBy)
	}

	// nina claims, then mama.
	if err := svc.Claim(ctx, id, "nina"); err != nil {
		t.Fatal(err)
	}
	it, _ = store.GetByID(ctx, id)
	if len(it.ClaimedBy) != 1 || it.ClaimedBy[0] != "nina" {
		t.Fatalf("after nina: %+v", it.ClaimedBy)
	}

	if err := svc.Claim(ctx, id, "mama"); err != nil {
		t.Fatal(err)
	}
	it, _ = store.GetByID(ctx, id)
	if len(it.ClaimedBy) != 2 || it.ClaimedBy[1] != "mama" {
		t.Fatalf("after mama: %+v", it.ClaimedBy)
	}
	if got := ClaimSummary(*it); got != "1/2 nina, 2/2 mama" {
		t.Errorf("summary = %q; want %q", got, "1/2 nina, 2/2 mama")
	}

	// nina returns it; mama moves up the queue.
	if err := svc.Return(ctx, id, "nina"); err != nil {
		t.Fatal(err)
	}
	it, _ = store.GetByID(ctx, id)
	if len(it.ClaimedBy) != 1 || it.ClaimedBy[0] != "mama" {
		t.Errorf("after return: %+v", it.ClaimedBy)
	}
}
