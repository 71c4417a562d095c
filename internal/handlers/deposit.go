package handlers

import (
	"cashon/internal/services/deposit"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type DepositHandler struct {
	deposits *deposit.Service
}

func NewDepositHandler(deposits *deposit.Service) *DepositHandler {
	return &DepositHandler{deposits: deposits}
}

func (h *DepositHandler) List(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, deposit.DefaultListLimit, deposit.MaxListLimit)
	items, err := h.deposits.List(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(items, p))
}

func (h *DepositHandler) Get(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	d, err := h.deposits.Get(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, fiber.Map{"deposit": d})
}
