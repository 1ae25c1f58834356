package services

import (
	"context"
	"errors"
	"testing"

	"accounthub/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.mustRegister(t, "ada@example.com")

	profile, err := env.userService.GetProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if profile.Email != "ada@example.com" {
		t.Errorf("email = %q, want ada@example.com", profile.Email)
	}
	if profile.Address.City != "Springfield" {
		t.Errorf("city = %q, want Springfield", profile.Address.City)
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.userService.GetProfile(context.Background(), 9999)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustRegister(t, "ada@example.com")

	profile, err := env.userService.UpdateProfile(ctx, user.ID, &UpdateProfileInput{
		FirstName: strPtr("Augusta"),
		Address:   &AddressPatch{City: strPtr("Shelbyville")},
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if profile.FirstName != "Augusta" {
		t.Errorf("firstName = %q, want Augusta", profile.FirstName)
	}
	if profile.Address.City != "Shelbyville" {
		t.Errorf("city = %q, want Shelbyville", profile.Address.City)
	}
	// untouched fields survive a partial update
	if profile.LastName != "Lovelace" {
		t.Errorf("lastName = %q, want Lovelace", profile.LastName)
	}
	if profile.Address.Street != "1 Main St" {
		t.Errorf("street = %q, want 1 Main St", profile.Address.Street)
	}
}

func TestUpdateProfileDoesNotTouchCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustRegister(t, "ada@example.com")

	if _, err := env.userService.UpdateProfile(ctx, user.ID, &UpdateProfileInput{
		PhoneNumber: strPtr("+14155550199"),
	}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	// the password still verifies after the update
	if _, err := env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "Sup3r$ecret"}); err != nil {
		t.Fatalf("login after profile update failed: %v", err)
	}
}

func TestDeleteAccountSoft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.authService.Register(ctx, testRegisterInput("ada@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	user, err := env.userRepo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if err := env.userService.DeleteAccount(ctx, user.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	// the soft-deleted account is gone from normal lookups
	if _, err := env.userRepo.GetByEmail(ctx, "ada@example.com"); err == nil {
		t.Fatal("deleted account still visible")
	}

	// outstanding refresh tokens die with the account
	if _, err := env.authService.RefreshToken(ctx, result.RefreshToken); err == nil {
		t.Fatal("refresh token survived account deletion")
	}
}

func TestDeleteAccountHard(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Auth.HardDeleteAccounts = true
	ctx := context.Background()
	user := env.mustRegister(t, "ada@example.com")

	if err := env.userService.DeleteAccount(ctx, user.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	// hard delete removes the row outright, soft-delete scope included
	var count int64
	if err := env.db.Table("users").Where("id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 rows after hard delete, found %d", count)
	}
}
