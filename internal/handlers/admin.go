package handlers

import (
	"time"

	"cashon/internal/logger"
	"cashon/internal/models"
	"cashon/internal/services/activity"
	"cashon/internal/services/savings"
	"cashon/internal/services/wallet"
	"cashon/internal/services/withdrawal"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const defaultStuckAge = 15 * time.Minute

// AdminHandler serves operator endpoints. Routes are mounted behind
// middleware.AdminOnly.
type AdminHandler struct {
	wallets     wallet.Service
	withdrawals *withdrawal.Service
	savings     *savings.Service
	activities  *activity.Service
}

func NewAdminHandler(
	wallets wallet.Service,
	withdrawals *withdrawal.Service,
	savings *savings.Service,
	activities *activity.Service,
) *AdminHandler {
	return &AdminHandler{
		wallets:     wallets,
		withdrawals: withdrawals,
		savings:     savings,
		activities:  activities,
	}
}

func (h *AdminHandler) FundWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		UserID     uint              `json:"user_id"`
		WalletType models.WalletType `json:"wallet_type"`
		Amount     decimal.Decimal   `json:"amount"`
		Reason     string            `json:"reason"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	res, err := h.wallets.FundWallet(c.UserContext(), wallet.FundRequest{
		AdminID:    claims.UserID,
		UserID:     input.UserID,
		WalletType: input.WalletType,
		Amount:     input.Amount,
		Reason:     input.Reason,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message":     "Wallet funded",
		"transaction": res.Entry,
		"new_balance": res.NewBalance,
	})
}

func (h *AdminHandler) VerifyLedger(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	report, err := h.wallets.VerifyLedger(c.UserContext(), id)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, report)
}

// StuckWithdrawals lists withdrawals in processing for longer than the
// older_than query duration (default 15m).
func (h *AdminHandler) StuckWithdrawals(c *fiber.Ctx) error {
	olderThan := defaultStuckAge
	if raw := c.Query("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			return utils.BadRequest(c, "older_than must be a duration such as 30m")
		}
		olderThan = d
	}

	items, err := h.withdrawals.ListStuck(c.UserContext(), olderThan)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, fiber.Map{
		"withdrawals": items,
		"count":       len(items),
	})
}

func (h *AdminHandler) ReconcileWithdrawal(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	var input struct {
		Succeeded *bool  `json:"succeeded"`
		Note      string `json:"note"`
	}
	if err := c.BodyParser(&input); err != nil || input.Succeeded == nil {
		return utils.BadRequest(c, "succeeded is required")
	}

	w, err := h.withdrawals.Reconcile(c.UserContext(), withdrawal.ReconcileRequest{
		WithdrawalID: id,
		Succeeded:    *input.Succeeded,
		AdminID:      claims.UserID,
		Note:         input.Note,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}

	logger.Info().
		Uint("admin_id", claims.UserID).
		Uint("withdrawal_id", id).
		Str("status", string(w.Status)).
		Msg("withdrawal reconciled")
	return utils.Success(c, fiber.Map{"withdrawal": w})
}

// SweepInterest runs an interest sweep now. Periods already accrued are skipped.
func (h *AdminHandler) SweepInterest(c *fiber.Ctx) error {
	res, err := h.savings.Sweep(c.UserContext(), time.Now().UTC())
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, res)
}

// Related resolves the entity an activity points at.
func (h *AdminHandler) Related(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}
	entity, err := h.activities.Resolve(c.UserContext(), models.RelatedRef{
		Kind: models.RelatedKind(c.Params("kind")),
		ID:   id,
	})
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, fiber.Map{"related": entity})
}
