package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"accounthub/internal/adapters/http/middleware"
	"accounthub/internal/adapters/persistence/models"
	"accounthub/internal/config"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestApp wires the full HTTP stack against an in-memory database
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		AppMode: "dev",
		Port:    "3000",
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  60,
			RefreshTokenDays: 7,
		},
		Auth: config.AuthConfig{
			LockMaxAttempts:  5,
			LockDurationMins: 30,
			PasswordStrict:   true,
		},
	}
	config.AppConfig = cfg

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.CustomErrorHandler,
	})
	middleware.Setup(app, cfg)
	Setup(app, db, cfg)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	resp.Body.Close()

	return resp, raw
}

func registerBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"email":       email,
		"password":    "Sup3r$ecret",
		"firstName":   "Ada",
		"lastName":    "Lovelace",
		"dateOfBirth": "1990-06-15",
		"phoneNumber": "+14155550100",
		"address": map[string]string{
			"street":     "1 Main St",
			"city":       "Springfield",
			"country":    "US",
			"postalCode": "12345",
		},
	}
}

// register registers a user through the API and returns the access token
func register(t *testing.T, app *fiber.App, email string) string {
	t.Helper()

	resp, raw := doJSON(t, app, "POST", "/api/users/register", "", registerBody(email))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register status = %d, body: %s", resp.StatusCode, raw)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	if body.Token == "" {
		t.Fatal("register response carries no access token")
	}
	return body.Token
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	app := newTestApp(t)

	resp, raw := doJSON(t, app, "POST", "/api/users/register", "", registerBody("ada@example.com"))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("register status = %d, body: %s", resp.StatusCode, raw)
	}
	if strings.Contains(string(raw), "Sup3r$ecret") || strings.Contains(string(raw), `"password"`) {
		t.Fatal("registration response leaks the password")
	}

	resp, raw = doJSON(t, app, "POST", "/api/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "Sup3r$ecret",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login status = %d, body: %s", resp.StatusCode, raw)
	}

	var login struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(raw, &login); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if login.User.Email != "ada@example.com" {
		t.Errorf("login user email = %q", login.User.Email)
	}

	resp, raw = doJSON(t, app, "GET", "/api/users/profile", login.Token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("profile status = %d, body: %s", resp.StatusCode, raw)
	}
	if strings.Contains(string(raw), `"password"`) {
		t.Fatal("profile response leaks the password hash")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "ada@example.com")

	resp, raw := doJSON(t, app, "POST", "/api/users/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401, body: %s", resp.StatusCode, raw)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Message != "Invalid credentials" {
		t.Errorf("message = %q, want the default English catalog entry", body.Message)
	}
}

func TestLoginLocalizedError(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "ada@example.com")

	resp, raw := doJSON(t, app, "POST", "/api/users/login?lng=es", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401, body: %s", resp.StatusCode, raw)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body.Message != "Credenciales inválidas" {
		t.Errorf("message = %q, want the Spanish catalog entry", body.Message)
	}
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "ada@example.com")

	resp, raw := doJSON(t, app, "POST", "/api/users/register", "", registerBody("ada@example.com"))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", resp.StatusCode, raw)
	}
}

func TestProfileRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, "GET", "/api/users/profile", "", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, "GET", "/api/users/profile", "garbage-token", nil)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for a garbage token", resp.StatusCode)
	}
}

func TestProfileUpdateRejectsProtectedFields(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "ada@example.com")

	// email, password and role are not editable through this endpoint
	for _, field := range []string{"email", "password", "role"} {
		resp, raw := doJSON(t, app, "PATCH", "/api/users/profile", token, map[string]string{
			field: "hijacked",
		})
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("field %q: status = %d, want 400, body: %s", field, resp.StatusCode, raw)
		}
	}

	// the allowed fields still work
	resp, raw := doJSON(t, app, "PATCH", "/api/users/profile", token, map[string]interface{}{
		"firstName": "Augusta",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", resp.StatusCode, raw)
	}
}

func TestKYCVerifyRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "ada@example.com")

	resp, raw := doJSON(t, app, "POST", "/api/kyc/verify", token, map[string]interface{}{
		"userId": 1,
		"action": "approve",
	})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403, body: %s", resp.StatusCode, raw)
	}
}

func TestKYCSubmitAndStatus(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "ada@example.com")

	resp, raw := doJSON(t, app, "POST", "/api/kyc/submit", token, map[string]string{
		"documentType":   "passport",
		"documentNumber": "P1234567",
		"documentExpiry": "2040-01-01",
		"documentFront":  "front.jpg",
		"documentBack":   "back.jpg",
		"selfie":         "selfie.jpg",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("submit status = %d, body: %s", resp.StatusCode, raw)
	}

	resp, raw = doJSON(t, app, "GET", "/api/kyc/status", token, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status endpoint = %d, body: %s", resp.StatusCode, raw)
	}

	var status struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &status); err != nil {
		t.Fatalf("failed to decode status response: %v", err)
	}
	if status.Status != "submitted" {
		t.Errorf("status = %q, want submitted", status.Status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)

	resp, raw := doJSON(t, app, "GET", "/health", "", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, body: %s", resp.StatusCode, raw)
	}
	if !strings.Contains(string(raw), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", raw)
	}
}
