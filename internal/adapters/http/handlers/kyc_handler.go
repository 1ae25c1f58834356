package handlers

import (
	"errors"
	"time"

	"accounthub/internal/adapters/http/middleware"
	"accounthub/internal/core/domain"
	"accounthub/internal/core/services"
	"accounthub/internal/pkg/i18n"
	"accounthub/internal/pkg/pagination"
	"accounthub/internal/pkg/response"
	"accounthub/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// KYCHandler handles identity-verification endpoints
type KYCHandler struct {
	kycService *services.KYCService
}

// NewKYCHandler creates a new KYC handler
func NewKYCHandler(kycService *services.KYCService) *KYCHandler {
	return &KYCHandler{kycService: kycService}
}

// SubmitKYCRequest represents a document submission body
type SubmitKYCRequest struct {
	DocumentType   string `json:"documentType" validate:"required,oneof=passport nationalId drivingLicense"`
	DocumentNumber string `json:"documentNumber" validate:"required,max=100"`
	DocumentExpiry string `json:"documentExpiry" validate:"required"`
	DocumentFront  string `json:"documentFront" validate:"required"`
	DocumentBack   string `json:"documentBack" validate:"required"`
	Selfie         string `json:"selfie" validate:"required"`
}

// VerifyKYCRequest represents an admin review decision body
type VerifyKYCRequest struct {
	UserID          uint   `json:"userId" validate:"required"`
	Action          string `json:"action" validate:"required,oneof=approve reject"`
	RejectionReason string `json:"rejectionReason" validate:"required_if=Action reject"`
}

var submitMessageKeys = map[string]string{
	"DocumentType.required":   "kyc.invalidDocumentType",
	"DocumentType.oneof":      "kyc.invalidDocumentType",
	"DocumentNumber.required": "kyc.documentNumberRequired",
	"DocumentNumber.max":      "kyc.documentNumberRequired",
	"DocumentExpiry.required": "kyc.invalidExpiryDate",
	"DocumentFront.required":  "kyc.documentFrontRequired",
	"DocumentBack.required":   "kyc.documentBackRequired",
	"Selfie.required":         "kyc.selfieRequired",
}

var verifyMessageKeys = map[string]string{
	"UserID.required":             "kyc.userIdRequired",
	"Action.required":             "kyc.invalidAction",
	"Action.oneof":                "kyc.invalidAction",
	"RejectionReason.required_if": "kyc.rejectionReasonRequired",
}

// Submit handles a KYC document submission
// @Summary Submit KYC documents
// @Description Submit identity documents for verification
// @Tags KYC
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SubmitKYCRequest true "Document data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /api/kyc/submit [post]
func (h *KYCHandler) Submit(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, i18n.T(c, "auth.unauthenticated"))
	}

	var req SubmitKYCRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(c, "error.invalidBody"))
	}
	if err := validation.ValidateStruct(&req); err != nil {
		key := validation.MessageKey(err, submitMessageKeys, "error.invalidBody")
		return response.BadRequest(c, i18n.T(c, key))
	}

	expiry, err := time.Parse(dateOfBirthLayout, req.DocumentExpiry)
	if err != nil {
		// also accept full timestamps
		expiry, err = time.Parse(time.RFC3339, req.DocumentExpiry)
		if err != nil {
			return response.BadRequest(c, i18n.T(c, "kyc.invalidExpiryDate"))
		}
	}

	input := &services.SubmitInput{
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		DocumentExpiry: expiry,
		DocumentFront:  req.DocumentFront,
		DocumentBack:   req.DocumentBack,
		Selfie:         req.Selfie,
	}

	kyc, err := h.kycService.Submit(c.Context(), user.ID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrKYCAlreadySubmitted):
			return response.BadRequest(c, i18n.T(c, "kyc.alreadySubmitted"))
		case errors.Is(err, domain.ErrKYCAlreadyVerified):
			return response.BadRequest(c, i18n.T(c, "kyc.alreadyVerified"))
		case errors.Is(err, domain.ErrKYCInvalidDocument):
			return response.BadRequest(c, i18n.T(c, "kyc.invalidDocumentType"))
		case errors.Is(err, domain.ErrKYCDocumentExpired):
			return response.BadRequest(c, i18n.T(c, "kyc.documentExpired"))
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, i18n.T(c, "error.userNotFound"))
		default:
			return response.InternalServerError(c, i18n.T(c, "error.server"))
		}
	}

	return response.OK(c, fiber.Map{
		"message": i18n.T(c, "kyc.submitted"),
		"kyc":     kyc,
	})
}

// Status returns the authenticated user's verification state
// @Summary Get KYC status
// @Description Get the current verification state of the authenticated user
// @Tags KYC
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.ErrorBody
// @Router /api/kyc/status [get]
func (h *KYCHandler) Status(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, i18n.T(c, "auth.unauthenticated"))
	}

	kyc, err := h.kycService.Status(c.Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, i18n.T(c, "error.userNotFound"))
		}
		return response.InternalServerError(c, i18n.T(c, "error.server"))
	}

	return response.OK(c, fiber.Map{
		"status":           kyc.Status,
		"documentType":     kyc.DocumentType,
		"verificationDate": kyc.VerificationDate,
		"rejectionReason":  kyc.RejectionReason,
	})
}

// Verify applies an admin review decision
// @Summary Verify KYC submission
// @Description Approve or reject a submitted verification (admin only)
// @Tags KYC
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body VerifyKYCRequest true "Review decision"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /api/kyc/verify [post]
func (h *KYCHandler) Verify(c *fiber.Ctx) error {
	var req VerifyKYCRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(c, "error.invalidBody"))
	}
	if err := validation.ValidateStruct(&req); err != nil {
		key := validation.MessageKey(err, verifyMessageKeys, "error.invalidBody")
		return response.BadRequest(c, i18n.T(c, key))
	}

	input := &services.VerifyInput{
		UserID:          req.UserID,
		Action:          req.Action,
		RejectionReason: req.RejectionReason,
	}

	kyc, err := h.kycService.Verify(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, i18n.T(c, "error.userNotFound"))
		case errors.Is(err, domain.ErrKYCNotSubmitted):
			return response.BadRequest(c, i18n.T(c, "kyc.notSubmitted"))
		case errors.Is(err, domain.ErrKYCInvalidStatus):
			return response.BadRequest(c, i18n.T(c, "kyc.invalidStatus"))
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, i18n.T(c, "kyc.invalidAction"))
		default:
			return response.InternalServerError(c, i18n.T(c, "error.server"))
		}
	}

	messageKey := "kyc.approveSuccess"
	if req.Action == services.ActionReject {
		messageKey = "kyc.rejectSuccess"
	}

	return response.OK(c, fiber.Map{
		"message": i18n.T(c, messageKey),
		"kyc":     kyc,
	})
}

// ListPending lists submissions awaiting review
// @Summary List pending KYC submissions
// @Description List accounts with a submitted verification, oldest first (admin only)
// @Tags KYC
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} response.ErrorBody
// @Router /api/kyc/pending [get]
func (h *KYCHandler) ListPending(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	users, total, err := h.kycService.ListPending(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, i18n.T(c, "error.server"))
	}

	return response.OK(c, fiber.Map{
		"users":      users,
		"pagination": pagination.GetMeta(params, total),
	})
}
