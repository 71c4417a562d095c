package handlers

import (
	apperrors "cashon/internal/errors"
	"cashon/internal/services/wallet"
	"cashon/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

func (h *WalletHandler) ListWallets(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	wallets, err := h.walletService.ListWallets(c.UserContext(), claims.UserID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"wallets": wallets,
	})
}

// GetTransactions lists ledger entries of one of the caller's wallets, newest first.
func (h *WalletHandler) GetTransactions(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}
	walletID, err := paramID(c, "id")
	if err != nil {
		return utils.RespondError(c, err)
	}

	w, err := h.walletService.GetWallet(c.UserContext(), walletID)
	if err != nil {
		return utils.RespondError(c, err)
	}
	if w.UserID != claims.UserID {
		return utils.RespondError(c, apperrors.ErrWalletNotFound)
	}

	p := utils.GetPagination(c, wallet.DefaultHistoryLimit, wallet.MaxHistoryLimit)
	txns, err := h.walletService.GetTransactionHistory(c.UserContext(), walletID, p.Limit, p.Offset)
	if err != nil {
		return utils.RespondError(c, err)
	}
	return utils.Success(c, utils.NewPaginatedResponse(txns, p))
}
