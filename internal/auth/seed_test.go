package auth

import (
	"context"
	"log/slog"
	"testing"
)

func TestSeedUser_CreatesOnEmptyDB(t *testing.T) {
	db := testDB(t)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	user, err := SeedUser(ctx, userRepo, "", "owner@example.com", slog.Default())
	if err != nil {
		t.Fatalf("SeedUser() error = %v", err)
	}
	if user == nil || user.ID <= 0 {
		t.Fatalf("SeedUser() = %+v, want created user", user)
	}

	got, err := userRepo.GetByEmail(ctx, "owner@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.Name != "Owner" {
		t.Errorf("Name = %q, want default %q", got.Name, "Owner")
	}
}

func TestSeedUser_SkipsWhenUsersExist(t *testing.T) {
	db := testDB(t)
	userRepo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "existing")

	user, err := SeedUser(ctx, userRepo, "Owner", "owner@example.com", slog.Default())
	if err != nil {
		t.Fatalf("SeedUser() error = %v", err)
	}
	if user != nil {
		t.Error("SeedUser() should skip when users exist")
	}

	count, _ := userRepo.Count(ctx) //nolint:errcheck // test assertion below
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestSeedUser_DisabledWithoutEmail(t *testing.T) {
	db := testDB(t)
	userRepo := NewUserRepository(db)

	user, err := SeedUser(context.Background(), userRepo, "Owner", "", slog.Default())
	if err != nil || user != nil {
		t.Errorf("SeedUser() = %+v, %v; want nil, nil", user, err)
	}
}
