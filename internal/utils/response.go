package utils

import (
	apperrors "cashon/internal/errors"
	"cashon/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// Production hides error details from 5xx responses. Set once at startup.
var Production bool

const genericMessage = "something went wrong, please try again later"

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

func Accepted(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusAccepted, data)
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusBadRequest, fiber.Map{"error": message})
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusUnauthorized, fiber.Map{"error": message})
}

// Forbidden sends a JSON error response with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusForbidden, fiber.Map{"error": message})
}

// RespondError writes err with the status of its DomainError class. Server
// side failures are logged; in production their detail never reaches the body.
func RespondError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)
	de, ok := apperrors.As(err)
	if !ok {
		de = apperrors.ErrInternal.WithError(err)
	}

	if status >= fiber.StatusInternalServerError {
		logger.Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("code", de.Code).
			Msg("request failed")
		if Production {
			return Respond(c, status, fiber.Map{"error": genericMessage, "code": apperrors.ErrInternal.Code})
		}
	}

	body := fiber.Map{"error": de.Message, "code": de.Code}
	if de.Details != nil {
		body["details"] = de.Details
	}
	return Respond(c, status, body)
}
