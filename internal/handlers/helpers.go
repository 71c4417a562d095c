// Package handlers holds the fiber handlers. They parse input, call a service
// and render the result; business rules stay in the services.
package handlers

import (
	apperrors "cashon/internal/errors"
	"cashon/internal/models"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
)

var errInvalidID = apperrors.ErrValidation.WithMessage("invalid id")

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}
