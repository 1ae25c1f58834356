package jwt

import (
	"errors"
	"testing"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "user@example.com", "user", testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateAccessToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Email = %q, want user@example.com", claims.Email)
	}
	if claims.Role != "user" {
		t.Errorf("Role = %q, want user", claims.Role)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(1, "user@example.com", "user", testSecret, 60)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := ValidateAccessToken(token, "other-secret"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(1, "user@example.com", "user", testSecret, -1)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := ValidateAccessToken(token, testSecret); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAccessTokenGarbage(t *testing.T) {
	if _, err := ValidateAccessToken("not.a.token", testSecret); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(42, "token-id-1", testSecret, 7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	claims, err := ValidateRefreshToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateRefreshToken failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.TokenID != "token-id-1" {
		t.Errorf("TokenID = %q, want token-id-1", claims.TokenID)
	}
}

func TestRefreshTokenNotValidAsAccessSecret(t *testing.T) {
	// access and refresh tokens are signed with different secrets
	refresh, err := GenerateRefreshToken(1, "token-id", "refresh-secret", 7)
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	if _, err := ValidateAccessToken(refresh, testSecret); err == nil {
		t.Fatal("refresh token validated as access token")
	}
}
