package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"accounthub/internal/adapters/persistence/models"
	"accounthub/internal/adapters/persistence/repositories"
	"accounthub/internal/core/domain"

	"gorm.io/gorm"
)

// KYCService drives the document-review workflow:
// pending -> submitted -> verified | rejected. A rejected record may be
// resubmitted; a verified one is terminal.
type KYCService struct {
	userRepo repositories.UserRepository
}

// NewKYCService creates a new KYC service
func NewKYCService(userRepo repositories.UserRepository) *KYCService {
	return &KYCService{userRepo: userRepo}
}

// SubmitInput represents a KYC document submission
type SubmitInput struct {
	DocumentType   string
	DocumentNumber string
	DocumentExpiry time.Time
	DocumentFront  string
	DocumentBack   string
	Selfie         string
}

// VerifyInput represents an admin review decision
type VerifyInput struct {
	UserID          uint
	Action          string // approve | reject
	RejectionReason string
}

// Review actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// submittableStatuses are the states a (re)submission may start from.
// The empty string is the never-started record.
var submittableStatuses = []string{"", models.KYCStatusPending, models.KYCStatusRejected}

// Submit stores a document submission and moves the record to submitted
func (s *KYCService) Submit(ctx context.Context, userID uint, input *SubmitInput) (*models.KYCResponse, error) {
	// 1. Guard the document fields before touching any state
	if !validDocumentType(input.DocumentType) {
		return nil, domain.ErrKYCInvalidDocument
	}
	if strings.TrimSpace(input.DocumentNumber) == "" ||
		input.DocumentFront == "" || input.DocumentBack == "" || input.Selfie == "" {
		return nil, domain.ErrKYCInvalidDocument
	}
	if !input.DocumentExpiry.After(time.Now()) {
		return nil, domain.ErrKYCDocumentExpired
	}

	// 2. Resolve the account and check the current workflow state
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	switch user.KYC.Status {
	case models.KYCStatusSubmitted:
		return nil, domain.ErrKYCAlreadySubmitted
	case models.KYCStatusVerified:
		return nil, domain.ErrKYCAlreadyVerified
	}

	// 3. Overwrite the embedded record; the guard re-checks the status so
	// a racing submission cannot double-apply
	expiry := input.DocumentExpiry
	kyc := &models.KYC{
		Status:         models.KYCStatusSubmitted,
		DocumentType:   input.DocumentType,
		DocumentNumber: strings.TrimSpace(input.DocumentNumber),
		DocumentExpiry: &expiry,
		DocumentFront:  input.DocumentFront,
		DocumentBack:   input.DocumentBack,
		Selfie:         input.Selfie,
	}

	applied, err := s.userRepo.SubmitKYC(ctx, userID, kyc, submittableStatuses)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, domain.ErrKYCAlreadySubmitted
	}

	log.Printf("📄 KYC submitted: user %d (%s)", userID, input.DocumentType)
	return kyc.ToResponse(), nil
}

// Status returns the current KYC record. Before any submission an implicit
// pending record is reported; nothing is written on read.
func (s *KYCService) Status(ctx context.Context, userID uint) (*models.KYCResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	return user.KYC.ToResponse(), nil
}

// Verify applies an admin review decision to a submitted record
func (s *KYCService) Verify(ctx context.Context, input *VerifyInput) (*models.KYCResponse, error) {
	if input.Action != ActionApprove && input.Action != ActionReject {
		return nil, domain.ErrInvalidInput
	}
	if input.Action == ActionReject && strings.TrimSpace(input.RejectionReason) == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if !user.KYC.Started() {
		return nil, domain.ErrKYCNotSubmitted
	}
	if user.KYC.Status != models.KYCStatusSubmitted {
		return nil, domain.ErrKYCInvalidStatus
	}

	now := time.Now()
	status := models.KYCStatusVerified
	var reason *string
	if input.Action == ActionReject {
		status = models.KYCStatusRejected
		trimmed := strings.TrimSpace(input.RejectionReason)
		reason = &trimmed
	}

	applied, err := s.userRepo.DecideKYC(ctx, input.UserID, status, now, reason)
	if err != nil {
		return nil, err
	}
	if !applied {
		// another admin decided first
		return nil, domain.ErrKYCInvalidStatus
	}

	kyc := user.KYC
	kyc.Status = status
	kyc.VerificationDate = &now
	kyc.RejectionReason = reason

	log.Printf("🔍 KYC %sd: user %d", input.Action, input.UserID)
	return kyc.ToResponse(), nil
}

// ListPending lists accounts awaiting review, oldest submission first
func (s *KYCService) ListPending(ctx context.Context, offset, limit int) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.ListByKYCStatus(ctx, models.KYCStatusSubmitted, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, total, nil
}

func validDocumentType(t string) bool {
	switch t {
	case models.DocumentTypePassport, models.DocumentTypeNationalID, models.DocumentTypeDrivingLicense:
		return true
	}
	return false
}
