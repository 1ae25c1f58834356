package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"accounthub/internal/adapters/persistence/models"
	"accounthub/internal/adapters/persistence/repositories"
	"accounthub/internal/config"
	"accounthub/internal/core/domain"
	"accounthub/internal/pkg/jwt"
	"accounthub/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// failureRetries bounds the compare-and-set loop when concurrent failed
// logins race on the attempt counter.
const failureRetries = 3

// AuthService handles the credential lifecycle: registration, login with
// failed-attempt lockout, and token issuance.
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	PhoneNumber string
	Address     models.Address
}

// LoginInput represents login input
type LoginInput struct {
	Email    string
	Password string
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// NormalizeEmail lowercases and trims an email so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register registers a new user
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	email := NormalizeEmail(input.Email)

	// 1. Reject duplicate emails
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	// 2. Enforce complexity before hashing, never after
	if !password.Validate(input.Password, s.cfg.Auth.PasswordStrict) {
		return nil, domain.ErrWeakPassword
	}

	// 3. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 4. Create user
	user := &models.User{
		Email:       email,
		Password:    hashedPassword,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		DateOfBirth: input.DateOfBirth,
		PhoneNumber: strings.TrimSpace(input.PhoneNumber),
		Address:     input.Address,
		Role:        models.RoleUser,
		IsActive:    true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// 5. Generate and store tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s", user.Email)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates a user, driving the lockout state machine:
// a failed attempt bumps the counter, the configured threshold locks the
// account for the configured window, and the lock is lifted lazily on the
// first attempt after it expires.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	now := time.Now()

	// 1. Find user; absence is reported as bad credentials
	user, err := s.userRepo.GetByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Locked accounts reject every attempt until the window passes
	if user.AccountLocked {
		if !user.LockExpired(now) {
			return nil, domain.ErrAccountLocked
		}
		if _, err := s.userRepo.ClearExpiredLock(ctx, user.ID, now); err != nil {
			return nil, err
		}
		user.AccountLocked = false
		user.FailedLoginAttempts = 0
		user.LockUntil = nil
	}

	// 3. Verify password; a mismatch counts toward the lockout threshold
	if !password.Verify(input.Password, user.Password) {
		if err := s.recordFailedAttempt(ctx, user); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidCredentials
	}

	// 4. Correct credentials against a deactivated account
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	// 5. Success clears counters and stamps lastLogin
	if err := s.userRepo.ResetLoginState(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.FailedLoginAttempts = 0
	user.AccountLocked = false
	user.LockUntil = nil
	user.LastLogin = &now

	// 6. Issue tokens
	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s", user.Email)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// recordFailedAttempt bumps the attempt counter with a guarded update.
// When a concurrent failure moved the counter first, the fresh value is
// re-read and the increment retried, so simultaneous failures each count.
func (s *AuthService) recordFailedAttempt(ctx context.Context, user *models.User) error {
	attempts := user.FailedLoginAttempts

	for i := 0; i < failureRetries; i++ {
		var lockUntil *time.Time
		if attempts+1 >= s.cfg.Auth.LockMaxAttempts {
			until := time.Now().Add(time.Duration(s.cfg.Auth.LockDurationMins) * time.Minute)
			lockUntil = &until
		}

		applied, err := s.userRepo.RecordLoginFailure(ctx, user.ID, attempts, lockUntil)
		if err != nil {
			return err
		}
		if applied {
			if lockUntil != nil {
				log.Printf("🔒 Account locked after %d failed attempts: %s", attempts+1, user.Email)
			}
			return nil
		}

		fresh, err := s.userRepo.GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		if fresh.AccountLocked {
			return nil // another request already locked it
		}
		attempts = fresh.FailedLoginAttempts
	}

	return nil
}

// RefreshToken rotates the refresh token and issues a new access token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	// 2. Find the stored token by hash
	tokenHash := password.HashToken(refreshToken)
	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		return nil, domain.ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	// 3. Resolve the account
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}

	// 4. Rotate: revoke old, issue new
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	return s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash)
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token hash in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
