// Package middleware provides HTTP middleware for the fiber app.
package middleware

import (
	"strings"

	"cashon/internal/logger"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Authenticate validates the Bearer token in the Authorization header and
// stores its claims under utils.ClaimsKey.
func Authenticate(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return utils.Unauthorized(c, "missing authorization header")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return utils.Unauthorized(c, "invalid authorization format")
		}

		claims, err := utils.ParseToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
			return utils.Unauthorized(c, "invalid token")
		}

		c.Locals(utils.ClaimsKey, claims)
		return c.Next()
	}
}

// AdminOnly must run after Authenticate.
func AdminOnly(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	if !claims.IsAdmin() {
		logger.Warn().Uint("user_id", claims.UserID).Str("path", c.Path()).Msg("admin route denied")
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}
