package users_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pocketwell/pocketwell/internal/app/store/users"
	"github.com/pocketwell/pocketwell/internal/domain/models"
	"github.com/pocketwell/pocketwell/internal/testutil"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := users.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		UID:         "u1",
		Email:       "  Maya@Example.COM ",
		DisplayName: "Maya",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Email != "maya@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", created.Email)
	}
	if created.WaterTarget != models.DefaultWaterTarget || created.StepsTarget != models.DefaultStepsTarget {
		t.Errorf("targets = %d/%d, want defaults", created.WaterTarget, created.StepsTarget)
	}

	got, err := store.GetByUID(ctx, "u1")
	if err != nil {
		t.Fatalf("GetByUID() error = %v", err)
	}
	if got.Email != "maya@example.com" || got.DisplayName != "Maya" {
		t.Errorf("GetByUID() = %+v", got)
	}

	// Case-insensitive email lookup.
	byEmail, err := store.GetByEmail(ctx, "MAYA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.UID != "u1" {
		t.Errorf("GetByEmail().UID = %q", byEmail.UID)
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := users.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes() error = %v", err)
	}

	if _, err := store.Create(ctx, models.User{UID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, models.User{UID: "u1", Email: "b@example.com"}); !errors.Is(err, users.ErrDuplicate) {
		t.Errorf("Create() with taken uid error = %v, want ErrDuplicate", err)
	}
	if _, err := store.Create(ctx, models.User{UID: "u2", Email: "A@Example.com"}); !errors.Is(err, users.ErrDuplicate) {
		t.Errorf("Create() with taken email error = %v, want ErrDuplicate", err)
	}
}

func TestStore_UpdateTargets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := users.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{UID: "u1", Email: "a@example.com"}); err != nil {
		t.Fatal(err)
	}

	if err := store.UpdateWaterTarget(ctx, "u1", 12); err != nil {
		t.Fatalf("UpdateWaterTarget() error = %v", err)
	}
	if err := store.UpdateStepsTarget(ctx, "u1", 12000); err != nil {
		t.Fatalf("UpdateStepsTarget() error = %v", err)
	}

	got, err := store.GetByUID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.WaterTarget != 12 || got.StepsTarget != 12000 {
		t.Errorf("targets = %d/%d, want 12/12000", got.WaterTarget, got.StepsTarget)
	}

	if err := store.UpdateWaterTarget(ctx, "ghost", 5); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("UpdateWaterTarget(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestStore_Credentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := users.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		UID:         "u1",
		Email:       "a@example.com",
		Credentials: &models.Credentials{PasswordHash: []byte("hash-v1")},
	})
	if err != nil {
		t.Fatal(err)
	}

	revokedAt := time.Now().Truncate(time.Millisecond)
	if err := store.RevokeTokens(ctx, "u1", revokedAt); err != nil {
		t.Fatalf("RevokeTokens() error = %v", err)
	}
	if err := store.SetPasswordHash(ctx, "u1", []byte("hash-v2")); err != nil {
		t.Fatalf("SetPasswordHash() error = %v", err)
	}

	got, err := store.GetByUID(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Credentials == nil {
		t.Fatal("Credentials missing after update")
	}
	if string(got.Credentials.PasswordHash) != "hash-v2" {
		t.Errorf("PasswordHash = %q", got.Credentials.PasswordHash)
	}
	if !got.Credentials.TokensValidAfter.Equal(revokedAt) {
		t.Errorf("TokensValidAfter = %v, want %v", got.Credentials.TokensValidAfter, revokedAt)
	}
}

func TestStore_GetMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := users.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByUID(ctx, "nobody"); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("GetByUID() error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, users.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}
