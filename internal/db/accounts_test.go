package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"campusboard/internal/models"
)

func TestUpsertAccount_CreatesMember(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	account := &models.Account{Subject: "sub-new", Email: "new@school.test", DisplayName: "New Student"}

	if err := db.UpsertAccount(ctx, account); err != nil {
		t.Fatalf("UpsertAccount() error = %v", err)
	}
	if account.ID == uuid.Nil {
		t.Error("UpsertAccount() did not set ID")
	}
	if account.Role != models.RoleMember {
		t.Errorf("UpsertAccount() role = %q, want %q", account.Role, models.RoleMember)
	}
}

func TestUpsertAccount_KeepsRole(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	mod := createAccount(t, db, "sub-mod", models.RoleMod)

	again := &models.Account{Subject: "sub-mod", Email: "renamed@school.test", DisplayName: "Renamed"}
	if err := db.UpsertAccount(ctx, again); err != nil {
		t.Fatalf("UpsertAccount() error = %v", err)
	}
	if again.ID != mod.ID {
		t.Errorf("UpsertAccount() changed ID from %v to %v", mod.ID, again.ID)
	}
	if again.Role != models.RoleMod {
		t.Errorf("UpsertAccount() role = %q, want %q", again.Role, models.RoleMod)
	}

	fetched, err := db.GetAccountBySubject(ctx, "sub-mod")
	if err != nil {
		t.Fatalf("GetAccountBySubject() error = %v", err)
	}
	if fetched.Email != "renamed@school.test" {
		t.Errorf("email = %q, want %q", fetched.Email, "renamed@school.test")
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := db.GetAccountBySubject(ctx, "nobody"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetAccountBySubject() error = %v, want ErrAccountNotFound", err)
	}
	if _, err := db.GetAccountByID(ctx, uuid.New()); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("GetAccountByID() error = %v, want ErrAccountNotFound", err)
	}
	if _, err := db.UpdateAccountRole(ctx, uuid.New(), models.RoleAdmin); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("UpdateAccountRole() error = %v, want ErrAccountNotFound", err)
	}
}

func TestListAccountsAndModeratorEmails(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	createAccount(t, db, "member-1", models.RoleMember)
	createAccount(t, db, "mod-1", models.RoleMod)
	createAccount(t, db, "admin-1", models.RoleAdmin)

	all, total, err := db.ListAccounts(ctx, "", 1, 20)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("ListAccounts() = %d items, total %d, want 3", len(all), total)
	}

	mods, total, err := db.ListAccounts(ctx, models.RoleMod, 1, 20)
	if err != nil {
		t.Fatalf("ListAccounts(MOD) error = %v", err)
	}
	if total != 1 || mods[0].Subject != "mod-1" {
		t.Errorf("ListAccounts(MOD) = %+v", mods)
	}

	emails, err := db.GetModeratorEmails(ctx)
	if err != nil {
		t.Fatalf("GetModeratorEmails() error = %v", err)
	}
	if len(emails) != 2 {
		t.Errorf("GetModeratorEmails() = %v, want 2 addresses", emails)
	}
}
