package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"accounthub/internal/adapters/persistence/models"
	"accounthub/internal/adapters/persistence/repositories"
	"accounthub/internal/config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database per test
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// one named in-memory database per test so parallel tests stay isolated
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

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
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
}

type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	userRepo    repositories.UserRepository
	tokenRepo   repositories.RefreshTokenRepository
	authService *AuthService
	userService *UserService
	kycService  *KYCService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewRefreshTokenRepository(db)

	return &testEnv{
		db:          db,
		cfg:         cfg,
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		authService: NewAuthService(userRepo, tokenRepo, cfg),
		userService: NewUserService(userRepo, tokenRepo, cfg),
		kycService:  NewKYCService(userRepo),
	}
}

func testRegisterInput(email string) *RegisterInput {
	return &RegisterInput{
		Email:       email,
		Password:    "Sup3r$ecret",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DateOfBirth: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		PhoneNumber: "+14155550100",
		Address: models.Address{
			Street:     "1 Main St",
			City:       "Springfield",
			Country:    "US",
			PostalCode: "12345",
		},
	}
}

// mustRegister registers a user and returns the persisted record
func (e *testEnv) mustRegister(t *testing.T, email string) *models.User {
	t.Helper()

	if _, err := e.authService.Register(context.Background(), testRegisterInput(email)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, err := e.userRepo.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("failed to load registered user: %v", err)
	}
	return user
}
