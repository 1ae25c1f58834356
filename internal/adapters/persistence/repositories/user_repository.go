package repositories

import (
	"context"
	"time"

	"accounthub/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email (callers normalize to lowercase)
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail checks if email exists. Soft-deleted accounts still hold
// their email (the unique index covers them), so the check is unscoped.
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateFields updates selected columns of a user
func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a user; soft delete by default, hard when configured
func (r *userRepository) Delete(ctx context.Context, id uint, hard bool) error {
	tx := r.db.WithContext(ctx)
	if hard {
		tx = tx.Unscoped()
	}
	return tx.Delete(&models.User{}, id).Error
}

// ListByKYCStatus lists users whose KYC record is in the given status
func (r *userRepository) ListByKYCStatus(ctx context.Context, status string, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.db.WithContext(ctx).Model(&models.User{}).Where("kyc_status = ?", status)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("updated_at ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// RecordLoginFailure applies a compare-and-set increment of the attempt
// counter. The WHERE clause pins the counter to the value the caller read,
// so two concurrent failures cannot both count as one.
func (r *userRepository) RecordLoginFailure(ctx context.Context, id uint, prevAttempts int, lockUntil *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"failed_login_attempts": prevAttempts + 1,
	}
	if lockUntil != nil {
		updates["account_locked"] = true
		updates["lock_until"] = lockUntil
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND failed_login_attempts = ?", id, prevAttempts).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClearExpiredLock lifts a lockout whose window has passed
func (r *userRepository) ClearExpiredLock(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND account_locked = ? AND lock_until IS NOT NULL AND lock_until <= ?", id, true, now).
		Updates(map[string]interface{}{
			"account_locked":        false,
			"failed_login_attempts": 0,
			"lock_until":            nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResetLoginState clears counters and stamps lastLogin after a successful login
func (r *userRepository) ResetLoginState(ctx context.Context, id uint, lastLogin time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"account_locked":        false,
			"lock_until":            nil,
			"last_login":            lastLogin,
		}).Error
}

// SubmitKYC overwrites the embedded KYC record while the current status
// allows a (re)submission
func (r *userRepository) SubmitKYC(ctx context.Context, id uint, kyc *models.KYC, fromStatuses []string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND kyc_status IN ?", id, fromStatuses).
		Updates(map[string]interface{}{
			"kyc_status":            kyc.Status,
			"kyc_document_type":     kyc.DocumentType,
			"kyc_document_number":   kyc.DocumentNumber,
			"kyc_document_expiry":   kyc.DocumentExpiry,
			"kyc_document_front":    kyc.DocumentFront,
			"kyc_document_back":     kyc.DocumentBack,
			"kyc_selfie":            kyc.Selfie,
			"kyc_verification_date": nil,
			"kyc_rejection_reason":  nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecideKYC moves a submitted record to verified or rejected
func (r *userRepository) DecideKYC(ctx context.Context, id uint, status string, decidedAt time.Time, reason *string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND kyc_status = ?", id, models.KYCStatusSubmitted).
		Updates(map[string]interface{}{
			"kyc_status":            status,
			"kyc_verification_date": decidedAt,
			"kyc_rejection_reason":  reason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
