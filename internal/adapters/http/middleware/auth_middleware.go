package middleware

import (
	"strings"

	"accounthub/internal/adapters/persistence/models"
	"accounthub/internal/core/services"
	"accounthub/internal/pkg/i18n"
	"accounthub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthMiddleware
const (
	LocalUserID = "userID"
	LocalUser   = "user"
	LocalRole   = "role"
)

// AuthMiddleware validates the bearer token and resolves the account.
// A token whose account no longer exists or is deactivated is rejected,
// so revocation-by-deactivation takes effect on the next request.
func AuthMiddleware(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c, i18n.T(c, "auth.authenticationRequired"))
		}
		accessToken := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := authService.ValidateAccessToken(accessToken)
		if err != nil {
			return response.Unauthorized(c, i18n.T(c, "auth.unauthenticated"))
		}

		user, err := authService.GetUserByID(c.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			return response.Unauthorized(c, i18n.T(c, "auth.unauthenticated"))
		}

		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalUser, user)
		c.Locals(LocalRole, user.Role)

		return c.Next()
	}
}

// AdminOnly allows only accounts with the admin role. Must run after
// AuthMiddleware.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return response.Unauthorized(c, i18n.T(c, "auth.unauthenticated"))
		}
		if role != models.RoleAdmin {
			return response.Forbidden(c, i18n.T(c, "auth.adminRequired"))
		}
		return c.Next()
	}
}

// CurrentUser returns the account resolved by AuthMiddleware
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(LocalUser).(*models.User)
	return user, ok
}
