package handlers

import (
	"cashon/internal/services/withdrawal"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WithdrawalHandler struct {
	withdrawals *withdrawal.Service
}

func NewWithdrawalHandler(withdrawals *withdrawal.Service) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// Create records a pending withdrawal and queues it. The payout happens in
// the background, so the response is 202 with the pending record.
func (h *WithdrawalHandler) Create(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		BankAccountID uint            `json:"bank_account_id"`
		Amount        decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	w, err := h.withdrawals.Create(c.UserContext(), withdrawal.CreateRequest{
		UserID:        claims.UserID,
		BankAccountID: input.BankAccountID,
		Amount:        input.Amount,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.Accepted(c, fiber.Map{
		"message":    "Withdrawal is being processed",
		"withdrawal": w,
	})
}

func (h *WithdrawalHandler) Get(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	w, err := h.withdrawals.Get(c.UserContext(), claims.UserID, id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, fiber.Map{"withdrawal": w})
}

func (h *WithdrawalHandler) List(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	p := utils.GetPagination(c, withdrawal.DefaultListLimit, 100)
	items, err := h.withdrawals.List(c.UserContext(), claims.UserID, p.Limit, p.Offset)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(items, p))
}
