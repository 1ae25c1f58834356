package repositories

import (
	"context"
	"time"

	"accounthub/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface.
//
// The login-attempt and KYC mutators are guarded single-row updates: each one
// carries its expected current state in the WHERE clause and reports whether
// the update applied, so concurrent requests against the same account cannot
// lose each other's writes.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint, hard bool) error
	ListByKYCStatus(ctx context.Context, status string, offset, limit int) ([]*models.User, int64, error)

	// RecordLoginFailure bumps the attempt counter from prevAttempts to
	// prevAttempts+1, locking until lockUntil when non-nil. Returns false
	// when another request moved the counter first.
	RecordLoginFailure(ctx context.Context, id uint, prevAttempts int, lockUntil *time.Time) (bool, error)

	// ClearExpiredLock lifts a lockout whose window has passed. Returns
	// false when the account was not locked or the window is still open.
	ClearExpiredLock(ctx context.Context, id uint, now time.Time) (bool, error)

	// ResetLoginState zeroes the attempt counter, clears any lock and
	// stamps lastLogin after a successful authentication.
	ResetLoginState(ctx context.Context, id uint, lastLogin time.Time) error

	// SubmitKYC overwrites the embedded KYC record, guarded so it only
	// applies while the current status is one of fromStatuses.
	SubmitKYC(ctx context.Context, id uint, kyc *models.KYC, fromStatuses []string) (bool, error)

	// DecideKYC moves a submitted record to verified or rejected.
	// Returns false when the record is no longer in submitted state.
	DecideKYC(ctx context.Context, id uint, status string, decidedAt time.Time, reason *string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}
