package handlers

import (
	"cashon/internal/services/savings"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type SavingsHandler struct {
	savings *savings.Service
}

func NewSavingsHandler(savings *savings.Service) *SavingsHandler {
	return &SavingsHandler{savings: savings}
}

func (h *SavingsHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input savings.CreateRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	input.UserID = claims.UserID

	saving, err := h.savings.Create(c.UserContext(), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Created(c, fiber.Map{
		"message": "Savings plan created",
		"saving":  saving,
	})
}

// List returns the caller's plans together with their active totals.
func (h *SavingsHandler) List(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	items, err := h.savings.List(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	summary, err := h.savings.Summary(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"savings": items,
		"summary": summary,
	})
}

func (h *SavingsHandler) Get(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	detail, err := h.savings.Get(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, detail)
}
