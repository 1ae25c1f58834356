package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"accounthub/internal/adapters/persistence/models"
	"accounthub/internal/adapters/persistence/repositories"
	"accounthub/internal/config"
	"accounthub/internal/core/domain"

	"gorm.io/gorm"
)

// UserService handles profile management
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// AddressPatch carries the optional address fields of a profile update;
// only the fields present in the request are written.
type AddressPatch struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	Country    *string `json:"country"`
	PostalCode *string `json:"postalCode"`
}

// UpdateProfileInput represents a partial profile update. Only these
// fields may be changed by the account owner.
type UpdateProfileInput struct {
	FirstName   *string       `json:"firstName" validate:"omitempty,max=50"`
	LastName    *string       `json:"lastName" validate:"omitempty,max=50"`
	PhoneNumber *string       `json:"phoneNumber" validate:"omitempty,e164"`
	Address     *AddressPatch `json:"address"`
}

// GetProfile returns the sanitized profile of a user
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateProfile applies a partial update to the allowed profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.PhoneNumber != nil {
		fields["phone_number"] = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Address != nil {
		if input.Address.Street != nil {
			fields["address_street"] = strings.TrimSpace(*input.Address.Street)
		}
		if input.Address.City != nil {
			fields["address_city"] = strings.TrimSpace(*input.Address.City)
		}
		if input.Address.State != nil {
			fields["address_state"] = strings.TrimSpace(*input.Address.State)
		}
		if input.Address.Country != nil {
			fields["address_country"] = strings.TrimSpace(*input.Address.Country)
		}
		if input.Address.PostalCode != nil {
			fields["address_postal_code"] = strings.TrimSpace(*input.Address.PostalCode)
		}
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// DeleteAccount removes the user's account. Depending on deployment
// configuration this is a soft delete or a hard delete; either way all
// refresh tokens are revoked so outstanding sessions die with it.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if !s.cfg.Auth.HardDeleteAccounts {
		if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"is_active": false}); err != nil {
			return err
		}
	}
	if err := s.userRepo.Delete(ctx, userID, s.cfg.Auth.HardDeleteAccounts); err != nil {
		return err
	}

	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return err
	}

	log.Printf("✅ Account deleted: %s (hard=%v)", user.Email, s.cfg.Auth.HardDeleteAccounts)
	return nil
}
