package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"accounthub/internal/core/domain"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.authService.Register(ctx, testRegisterInput("ada@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.User.Email != "ada@example.com" {
		t.Errorf("email = %q, want ada@example.com", result.User.Email)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("registration must issue a token pair")
	}

	login, err := env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "Sup3r$ecret"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.LastLogin == nil {
		t.Error("successful login must stamp lastLogin")
	}
}

func TestRegisterNormalizesEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := testRegisterInput("  Ada@Example.COM ")
	result, err := env.authService.Register(ctx, input)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.User.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized ada@example.com", result.User.Email)
	}

	// the differently-cased duplicate must be rejected
	if _, err := env.authService.Register(ctx, testRegisterInput("ADA@EXAMPLE.COM")); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestRegisterAfterAccountDeletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustRegister(t, "ada@example.com")

	// soft delete keeps the row (and its unique email) around
	if err := env.userService.DeleteAccount(ctx, user.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	_, err := env.authService.Register(ctx, testRegisterInput("ada@example.com"))
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail for a soft-deleted email, got %v", err)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	env := newTestEnv(t)

	input := testRegisterInput("ada@example.com")
	input.Password = "alllowercase"
	if _, err := env.authService.Register(context.Background(), input); !errors.Is(err, domain.ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	// absence reads the same as a bad password
	_, err := env.authService.Login(context.Background(), &LoginInput{Email: "ghost@example.com", Password: "whatever"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginFailureIncrementsCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustRegister(t, "ada@example.com")

	for i := 1; i <= 3; i++ {
		_, err := env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "wrong"})
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	fresh, err := env.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if fresh.FailedLoginAttempts != 3 {
		t.Errorf("failedLoginAttempts = %d, want 3", fresh.FailedLoginAttempts)
	}
	if fresh.AccountLocked {
		t.Error("account must not lock below the threshold")
	}
}

func TestLockoutAfterThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustRegister(t, "ada@example.com")

	for i := 1; i <= env.cfg.Auth.LockMaxAttempts; i++ {
		env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "wrong"})
	}

	fresh, err := env.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !fresh.AccountLocked {
		t.Fatal("account must lock at the threshold")
	}
	if fresh.LockUntil == nil || !fresh.LockUntil.After(time.Now()) {
		t.Fatal("lockUntil must be set in the future")
	}

	// even the correct password is rejected while locked
	_, err = env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "Sup3r$ecret"})
	if !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

func TestLockExpiresLazily(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustRegister(t, "ada@example.com")

	for i := 1; i <= env.cfg.Auth.LockMaxAttempts; i++ {
		env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "wrong"})
	}

	// backdate the lock so its window has passed
	past := time.Now().Add(-time.Minute)
	if err := env.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"lock_until": past}); err != nil {
		t.Fatalf("failed to backdate lock: %v", err)
	}

	login, err := env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "Sup3r$ecret"})
	if err != nil {
		t.Fatalf("login after lock expiry failed: %v", err)
	}
	if login.AccessToken == "" {
		t.Fatal("expected a fresh token pair")
	}

	fresh, err := env.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if fresh.AccountLocked || fresh.FailedLoginAttempts != 0 || fresh.LockUntil != nil {
		t.Error("success after expiry must clear the whole lockout state")
	}
}

func TestSuccessResetsCounter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustRegister(t, "ada@example.com")

	env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "wrong"})
	env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "wrong"})

	if _, err := env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "Sup3r$ecret"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	fresh, err := env.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if fresh.FailedLoginAttempts != 0 {
		t.Errorf("failedLoginAttempts = %d, want 0 after success", fresh.FailedLoginAttempts)
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.mustRegister(t, "ada@example.com")

	if err := env.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"is_active": false}); err != nil {
		t.Fatalf("failed to deactivate: %v", err)
	}

	// correct credentials against a deactivated account
	_, err := env.authService.Login(ctx, &LoginInput{Email: "ada@example.com", Password: "Sup3r$ecret"})
	if !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.authService.Register(ctx, testRegisterInput("ada@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	rotated, err := env.authService.RefreshToken(ctx, result.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if rotated.RefreshToken == result.RefreshToken {
		t.Fatal("rotation must issue a different refresh token")
	}

	// the old token is revoked and cannot be replayed
	if _, err := env.authService.RefreshToken(ctx, result.RefreshToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked on replay, got %v", err)
	}

	// the new token still works
	if _, err := env.authService.RefreshToken(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("rotated token failed to refresh: %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.authService.Register(ctx, testRegisterInput("ada@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := env.authService.Logout(ctx, result.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := env.authService.RefreshToken(ctx, result.RefreshToken); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after logout, got %v", err)
	}
}

func TestRefreshGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.authService.RefreshToken(context.Background(), "not-a-jwt")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateAccessToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.authService.Register(ctx, testRegisterInput("ada@example.com"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	claims, err := env.authService.ValidateAccessToken(result.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("claims email = %q, want ada@example.com", claims.Email)
	}
}
