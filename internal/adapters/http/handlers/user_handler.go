package handlers

import (
	"encoding/json"
	"errors"

	"accounthub/internal/adapters/http/middleware"
	"accounthub/internal/core/domain"
	"accounthub/internal/core/services"
	"accounthub/internal/pkg/i18n"
	"accounthub/internal/pkg/response"
	"accounthub/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles profile endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// allowedProfileFields are the only top-level keys a profile update may carry
var allowedProfileFields = map[string]bool{
	"firstName":   true,
	"lastName":    true,
	"phoneNumber": true,
	"address":     true,
}

var profileMessageKeys = map[string]string{
	"FirstName.max":    "validation.firstName.maxLength",
	"LastName.max":     "validation.lastName.maxLength",
	"PhoneNumber.e164": "validation.phoneNumber.invalid",
}

// GetProfile returns the authenticated user's profile
// @Summary Get profile
// @Description Get the authenticated user's profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse
// @Failure 401 {object} response.ErrorBody
// @Router /api/users/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, i18n.T(c, "auth.unauthenticated"))
	}

	profile, err := h.userService.GetProfile(c.Context(), user.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, i18n.T(c, "error.userNotFound"))
		}
		return response.InternalServerError(c, i18n.T(c, "error.server"))
	}

	return response.OK(c, profile)
}

// UpdateProfile applies a partial update to the authenticated user's profile
// @Summary Update profile
// @Description Update firstName, lastName, phoneNumber or address; other fields are rejected
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Router /api/users/profile [patch]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, i18n.T(c, "auth.unauthenticated"))
	}

	// 1. Reject any key outside the editable whitelist, so attempts to
	// change email, password or role fail loudly instead of silently
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil || len(raw) == 0 {
		return response.BadRequest(c, i18n.T(c, "error.invalidBody"))
	}
	for key := range raw {
		if !allowedProfileFields[key] {
			return response.BadRequest(c, i18n.T(c, "profile.invalidUpdates"))
		}
	}

	// 2. Parse and validate the permitted fields
	var input services.UpdateProfileInput
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return response.BadRequest(c, i18n.T(c, "error.invalidBody"))
	}
	if err := validation.ValidateStruct(&input); err != nil {
		key := validation.MessageKey(err, profileMessageKeys, "error.invalidBody")
		return response.BadRequest(c, i18n.T(c, key))
	}

	profile, err := h.userService.UpdateProfile(c.Context(), user.ID, &input)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, i18n.T(c, "error.userNotFound"))
		}
		return response.InternalServerError(c, i18n.T(c, "error.server"))
	}

	return response.OK(c, fiber.Map{
		"message": i18n.T(c, "profile.updateSuccess"),
		"user":    profile,
	})
}

// DeleteAccount removes the authenticated user's account
// @Summary Delete account
// @Description Delete the authenticated user's account and revoke its sessions
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.ErrorBody
// @Router /api/users/account [delete]
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, i18n.T(c, "auth.unauthenticated"))
	}

	if err := h.userService.DeleteAccount(c.Context(), user.ID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, i18n.T(c, "error.userNotFound"))
		}
		return response.InternalServerError(c, i18n.T(c, "error.server"))
	}

	return response.OK(c, fiber.Map{
		"message": i18n.T(c, "account.deleteSuccess"),
	})
}
