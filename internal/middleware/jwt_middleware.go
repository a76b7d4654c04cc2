package middleware

import (
	"strings"

	"storeapi/internal/models"
	"storeapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserKey is the Fiber locals key holding the authenticated *models.Identity.
const UserKey = "user"

// AuthRequired is a Fiber middleware that admits only requests carrying a
// valid bearer token. Every verification failure gets the same response.
func AuthRequired(tokens *services.TokenService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Please re-login to use application")
		}

		// Expected format: "<scheme> <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[1] == "" {
			return unauthorized(c, "Token missing, please re-login")
		}

		identity, err := tokens.ValidateToken(parts[1])
		if err != nil {
			log.Debug("JWT validation failed", zap.Error(err), zap.String("path", c.Path()))
			return unauthorized(c, "Invalid token, please login again")
		}

		c.Locals(UserKey, identity)
		return c.Next()
	}
}

// CurrentUser returns the identity stored by AuthRequired.
func CurrentUser(c *fiber.Ctx) (*models.Identity, bool) {
	identity, ok := c.Locals(UserKey).(*models.Identity)
	return identity, ok && identity != nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  false,
		"message": message,
	})
}
