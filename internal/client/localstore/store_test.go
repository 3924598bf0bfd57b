package localstore

import (
	"context"
	"errors"
	"testing"

	"github.com/wishkeep/wishkeep/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSeedsAdmin(t *testing.T) {
	s := newTestStore(t)
	sess, err := s.Login(context.Background(), "admin", "admin")
	if err != nil {
		t.Fatalf("expected seeded admin login to work: %v", err)
	}
	if !sess.IsAdmin() {
		t.Fatalf("expected admin role, got %q", sess.Role)
	}
}

func TestLoginRejectsWrongPasswordAndUnknownUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.CreateUser(ctx, "nina", "pw"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Login(ctx, "nina", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Login(ctx, "ghost", "pw"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreateUserValidatesAndOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, "", "pw"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty username, got %v", err)
	}
	if err := s.CreateUser(ctx, "nina", ""); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty password, got %v", err)
	}

	if err := s.CreateUser(ctx, "nina", "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, "nina", "second"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Login(ctx, "nina", "second"); err != nil {
		t.Fatalf("expected overwritten password to win: %v", err)
	}
}

func claimOf(t *testing.T, s *Store, name string) models.Item {
	t.Helper()
	items, err := s.Items(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.Name == name {
			return it
		}
	}
	t.Fatalf("item %q not found", name)
	return models.Item{}
}

func TestClaimIsIdempotentAndSharable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.CreateItem(ctx, "Bike", "red"); err != nil {
		t.Fatal(err)
	}
	id := claimOf(t, s, "Bike").ID

	for i := 0; i < 3; i++ {
		if err := s.ClaimItem(ctx, id, "nina"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.ClaimItem(ctx, id, "mama"); err != nil {
		t.Fatal(err)
	}

	got := claimOf(t, s, "Bike").ClaimedBy
	if len(got) != 2 || got[0] != "nina" || got[1] != "mama" {
		t.Fatalf("expected [nina mama], got %v", got)
	}
}

func TestReturnRemovesOnlyCaller(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.CreateItem(ctx, "Lego", ""); err != nil {
		t.Fatal(err)
	}
	id := claimOf(t, s, "Lego").ID
	_ = s.ClaimItem(ctx, id, "nina")
	_ = s.ClaimItem(ctx, id, "mama")

	if err := s.ReturnItem(ctx, id, "nina"); err != nil {
		t.Fatal(err)
	}
	// Double return stays silent.
	if err := s.ReturnItem(ctx, id, "nina"); err != nil {
		t.Fatal(err)
	}

	got := claimOf(t, s, "Lego").ClaimedBy
	if len(got) != 1 || got[0] != "mama" {
		t.Fatalf("expected [mama], got %v", got)
	}
}

func TestCreateItemRejectsBlankNames(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"", "   ", "\t"} {
		if err := s.CreateItem(ctx, name, "details"); !errors.Is(err, models.ErrValidation) {
			t.Errorf("CreateItem(%q): expected ErrValidation, got %v", name, err)
		}
	}
	items, err := s.Items(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Fatalf("rejected creates must not persist, got %v", items)
	}
}

func TestUpdateItemAcceptsAnyName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.CreateItem(ctx, "Bike", "red"); err != nil {
		t.Fatal(err)
	}
	id := claimOf(t, s, "Bike").ID

	// Updates are unvalidated overwrites, same as the remote path.
	if err := s.UpdateItem(ctx, id, "", ""); err != nil {
		t.Fatalf("expected unvalidated overwrite, got %v", err)
	}
	items, err := s.Items(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "" {
		t.Fatalf("expected overwritten name, got %+v", items)
	}
}

func TestClaimOnVanishedItemIsNoOp(t *testing.T) {
	s := newTestStore(t)
	if err := s.ClaimItem(context.Background(), "gone", "nina"); err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateItem(context.Background(), "gone", "Name", "")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameCascadesIntoClaims(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_ = s.CreateUser(ctx, "mama", "pw")
	_ = s.CreateItem(ctx, "Bike", "")
	id := claimOf(t, s, "Bike").ID
	_ = s.ClaimItem(ctx, id, "mama")
	_ = s.ClaimItem(ctx, id, "nina")

	if err := s.RenameUser(ctx, "mama", "mimi"); err != nil {
		t.Fatal(err)
	}

	got := claimOf(t, s, "Bike").ClaimedBy
	if len(got) != 2 || got[0] != "mimi" || got[1] != "nina" {
		t.Fatalf("expected claim order preserved with new name, got %v", got)
	}
	if _, err := s.Login(ctx, "mimi", "pw"); err != nil {
		t.Fatalf("expected login under new name: %v", err)
	}
}

func TestRenameConflictsAndMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_ = s.CreateUser(ctx, "mama", "pw")

	if err := s.RenameUser(ctx, "mama", "admin"); !errors.Is(err, models.ErrNameConflict) {
		t.Fatalf("expected ErrNameConflict, got %v", err)
	}
	if err := s.RenameUser(ctx, "ghost", "someone"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.RenameUser(ctx, "mama", "mama"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation for same name, got %v", err)
	}
}

func TestDeleteUserReleasesClaims(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_ = s.CreateUser(ctx, "mama", "pw")
	_ = s.CreateItem(ctx, "Bike", "")
	id := claimOf(t, s, "Bike").ID
	_ = s.ClaimItem(ctx, id, "mama")
	_ = s.ClaimItem(ctx, id, "nina")

	warnings, err := s.DeleteUser(ctx, "mama")
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	got := claimOf(t, s, "Bike").ClaimedBy
	if len(got) != 1 || got[0] != "nina" {
		t.Fatalf("expected only nina left, got %v", got)
	}
	if _, err := s.Login(ctx, "mama", "pw"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("expected deleted user rejected, got %v", err)
	}
}

func TestEventDetailsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if details, err := s.EventDetails(ctx); err != nil || details != "" {
		t.Fatalf("expected empty details initially, got %q, %v", details, err)
	}
	if err := s.SetEventDetails(ctx, "Saturday at noon"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEventDetails(ctx, "Sunday instead"); err != nil {
		t.Fatal(err)
	}
	details, err := s.EventDetails(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if details != "Sunday instead" {
		t.Fatalf("expected wholesale replacement, got %q", details)
	}
}

func TestRSVPLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_ = s.CreateUser(ctx, "nina", "pw")

	if err := s.ConfirmArrival(ctx, "nina"); err != nil {
		t.Fatal(err)
	}
	sess, _ := s.Login(ctx, "nina", "pw")
	if !sess.Coming {
		t.Fatal("expected coming=true after confirm")
	}

	if err := s.DeclineArrival(ctx, "nina"); err != nil {
		t.Fatal(err)
	}
	sess, _ = s.Login(ctx, "nina", "pw")
	if sess.Coming {
		t.Fatal("expected coming=false after decline")
	}

	if err := s.ConfirmArrival(ctx, "ghost"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestCancelArrivalReturnsEverythingAndReverts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_ = s.CreateUser(ctx, "nina", "pw")
	_ = s.ConfirmArrival(ctx, "nina")
	_ = s.CreateItem(ctx, "Bike", "")
	_ = s.CreateItem(ctx, "Lego", "")
	bike := claimOf(t, s, "Bike").ID
	lego := claimOf(t, s, "Lego").ID
	_ = s.ClaimItem(ctx, bike, "nina")
	_ = s.ClaimItem(ctx, lego, "nina")
	_ = s.ClaimItem(ctx, lego, "mama")

	warnings, err := s.CancelArrival(ctx, "nina")
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if got := claimOf(t, s, "Bike").ClaimedBy; len(got) != 0 {
		t.Fatalf("expected Bike released, got %v", got)
	}
	if got := claimOf(t, s, "Lego").ClaimedBy; len(got) != 1 || got[0] != "mama" {
		t.Fatalf("expected mama's claim untouched, got %v", got)
	}
	sess, _ := s.Login(ctx, "nina", "pw")
	if sess.Coming {
		t.Fatal("expected coming reverted after cancel")
	}
}
