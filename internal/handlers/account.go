package handlers

import (
	"cashon/internal/services/account"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler serves onboarding and the caller's bank accounts.
type AccountHandler struct {
	accounts *account.Service
}

func NewAccountHandler(accounts *account.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Onboard queues creation of the caller's wallets. The job is idempotent, so
// calling it for a user who already has wallets is harmless.
func (h *AccountHandler) Onboard(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	if err := h.accounts.Onboard(c.UserContext(), claims.UserID); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Accepted(c, fiber.Map{"message": "Wallets are being created"})
}

// RegisterUser is the operator path for creating a user.
func (h *AccountHandler) RegisterUser(c *fiber.Ctx) error {
	var input account.RegisterRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	user, err := h.accounts.Register(c.UserContext(), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Created(c, fiber.Map{"user": user})
}

func (h *AccountHandler) AddBankAccount(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input account.AddBankAccountRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	input.UserID = claims.UserID

	ba, err := h.accounts.AddBankAccount(c.UserContext(), input)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Created(c, fiber.Map{"bank_account": ba})
}

func (h *AccountHandler) ListBankAccounts(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	items, err := h.accounts.ListBankAccounts(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, fiber.Map{"bank_accounts": items, "count": len(items)})
}

func (h *AccountHandler) DeleteBankAccount(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	if err := h.accounts.DeleteBankAccount(c.UserContext(), claims.UserID, id); err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, fiber.Map{"message": "Bank account deleted"})
}
