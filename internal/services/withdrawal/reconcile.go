package withdrawal

import (
	"context"
	"errors"
	"strings"

	apperrors "cashon/internal/errors"
	"cashon/internal/logger"
	"cashon/internal/models"
	"cashon/internal/repositories"
)

type ReconcileRequest struct {
	WithdrawalID uint
	Succeeded    bool
	AdminID      uint
	Note         string
}

// Reconcile resolves a withdrawal left in processing by an ambiguous payout.
// Succeeded completes it; otherwise the debit is refunded. Either way an
// audit row is written with the state change. A withdrawal whose payout is
// still in flight has no ambiguous_at yet and is rejected.
func (s *Service) Reconcile(ctx context.Context, req ReconcileRequest) (*models.Withdrawal, error) {
	if req.AdminID == 0 {
		return nil, apperrors.ErrValidation.WithMessage("admin id is required")
	}

	w, err := s.store.Withdrawals.GetByID(ctx, req.WithdrawalID)
	if err != nil {
		if errors.Is(err, repositories.ErrWithdrawalNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, apperrors.ErrStorage.WithError(err)
	}
	if !w.AwaitingReconciliation() {
		details := map[string]string{"status": string(w.Status)}
		if w.Status == models.WithdrawalProcessing {
			details["reason"] = "payout not recorded as ambiguous"
		}
		return nil, apperrors.ErrInvalidTransition.WithDetails(details)
	}

	target := models.WithdrawalRefunded
	if req.Succeeded {
		target = models.WithdrawalCompleted
	}
	note := strings.TrimSpace(req.Note)
	audit := &models.AdminAudit{
		AdminID:    req.AdminID,
		Action:     "withdrawal.reconcile",
		EntityType: "withdrawal",
		EntityID:   w.ID,
		Before:     models.JSON{"status": string(w.Status)},
		After:      models.JSON{"status": string(target)},
		Reason:     note,
	}

	logger.Info().
		Uint("admin_id", req.AdminID).
		Uint("withdrawal_id", w.ID).
		Bool("succeeded", req.Succeeded).
		Msg("reconciling withdrawal")

	if req.Succeeded {
		return s.complete(ctx, w, repositories.SettleParked, models.JSON{"reconciled_by": req.AdminID, "reconcile_note": note}, audit)
	}
	reason := "reconciled as failed"
	if note != "" {
		reason = note
	}
	return s.refund(ctx, w, repositories.SettleParked, reason, audit)
}
