package utils

import (
	"errors"

	"cashon/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the fiber local the auth middleware stores claims under.
const ClaimsKey = "claims"

var ErrMissingClaims = errors.New("claims not found in context")

// GetUserClaims extracts the user claims from the Fiber context.
func GetUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals(ClaimsKey).(*models.UserClaims)
	if !ok || claims == nil {
		return nil, ErrMissingClaims
	}
	return claims, nil
}
