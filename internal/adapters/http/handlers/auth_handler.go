package handlers

import (
	"errors"
	"time"

	"accounthub/internal/adapters/persistence/models"
	"accounthub/internal/config"
	"accounthub/internal/core/domain"
	"accounthub/internal/core/services"
	"accounthub/internal/pkg/i18n"
	"accounthub/internal/pkg/response"
	"accounthub/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// dateOfBirthLayout is the wire format for the dateOfBirth field
const dateOfBirthLayout = "2006-01-02"

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// AddressRequest represents the address block of a registration request
type AddressRequest struct {
	Street     string `json:"street" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"omitempty,max=100"`
	State      string `json:"state" validate:"omitempty,max=100"`
	Country    string `json:"country" validate:"omitempty,max=100"`
	PostalCode string `json:"postalCode" validate:"omitempty,max=20"`
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Email       string         `json:"email" validate:"required,email"`
	Password    string         `json:"password" validate:"required,min=8"`
	FirstName   string         `json:"firstName" validate:"required,max=50"`
	LastName    string         `json:"lastName" validate:"required,max=50"`
	DateOfBirth string         `json:"dateOfBirth" validate:"required"`
	PhoneNumber string         `json:"phoneNumber" validate:"required,e164"`
	Address     AddressRequest `json:"address"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents refresh/logout request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// registerMessageKeys maps validation failures to message-catalog keys
var registerMessageKeys = map[string]string{
	"Email.required":       "validation.email.required",
	"Email.email":          "validation.email.invalid",
	"Password.required":    "validation.password.required",
	"Password.min":         "validation.password.minLength",
	"FirstName.required":   "validation.firstName.required",
	"FirstName.max":        "validation.firstName.maxLength",
	"LastName.required":    "validation.lastName.required",
	"LastName.max":         "validation.lastName.maxLength",
	"DateOfBirth.required": "validation.dateOfBirth.required",
	"PhoneNumber.required": "validation.phoneNumber.required",
	"PhoneNumber.e164":     "validation.phoneNumber.invalid",
}

// Register handles user registration
// @Summary Register new user
// @Description Register a new account and issue an initial token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Router /api/users/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(c, "error.invalidBody"))
	}

	// 1. Validate field shape
	if err := validation.ValidateStruct(&req); err != nil {
		key := validation.MessageKey(err, registerMessageKeys, "error.invalidBody")
		return response.BadRequest(c, i18n.T(c, key))
	}

	dateOfBirth, err := time.Parse(dateOfBirthLayout, req.DateOfBirth)
	if err != nil {
		return response.BadRequest(c, i18n.T(c, "validation.dateOfBirth.invalid"))
	}

	// 2. Register
	input := &services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dateOfBirth,
		PhoneNumber: req.PhoneNumber,
		Address: models.Address{
			Street:     req.Address.Street,
			City:       req.Address.City,
			State:      req.Address.State,
			Country:    req.Address.Country,
			PostalCode: req.Address.PostalCode,
		},
	}

	result, err := h.authService.Register(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return response.BadRequest(c, i18n.T(c, "error.duplicateEmail"))
		case errors.Is(err, domain.ErrWeakPassword):
			return response.BadRequest(c, i18n.T(c, "validation.password.complexity"))
		default:
			return response.InternalServerError(c, i18n.T(c, "error.server"))
		}
	}

	return response.Created(c, fiber.Map{
		"message":      i18n.T(c, "auth.registerSuccess"),
		"user":         result.User,
		"token":        result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password and return a token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /api/users/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, i18n.T(c, "error.invalidBody"))
	}

	if err := validation.ValidateStruct(&req); err != nil {
		return response.BadRequest(c, i18n.T(c, "error.invalidBody"))
	}

	input := &services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}

	result, err := h.authService.Login(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, i18n.T(c, "auth.invalidCredentials"))
		case errors.Is(err, domain.ErrAccountLocked):
			return response.Unauthorized(c, i18n.T(c, "auth.accountLocked"))
		case errors.Is(err, domain.ErrAccountDeactivated):
			return response.Unauthorized(c, i18n.T(c, "auth.accountDeactivated"))
		default:
			return response.InternalServerError(c, i18n.T(c, "error.server"))
		}
	}

	return response.OK(c, fiber.Map{
		"message":      i18n.T(c, "auth.loginSuccess"),
		"user":         result.User,
		"token":        result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Rotate the refresh token and issue a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.ErrorBody
// @Router /api/users/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return response.BadRequest(c, i18n.T(c, "error.invalidBody"))
	}

	result, err := h.authService.RefreshToken(c.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountDeactivated):
			return response.Unauthorized(c, i18n.T(c, "auth.accountDeactivated"))
		case errors.Is(err, domain.ErrTokenExpired),
			errors.Is(err, domain.ErrTokenRevoked),
			errors.Is(err, domain.ErrTokenInvalid),
			errors.Is(err, domain.ErrUserNotFound):
			return response.Unauthorized(c, i18n.T(c, "auth.unauthenticated"))
		default:
			return response.InternalServerError(c, i18n.T(c, "error.server"))
		}
	}

	return response.OK(c, fiber.Map{
		"message":      i18n.T(c, "auth.tokenRefreshed"),
		"token":        result.AccessToken,
		"refreshToken": result.RefreshToken,
	})
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the presented refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest true "Refresh token"
// @Success 200 {object} map[string]interface{}
// @Router /api/users/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
		_ = h.authService.Logout(c.Context(), req.RefreshToken)
	}

	return response.OK(c, fiber.Map{
		"message": i18n.T(c, "auth.logoutSuccess"),
	})
}
