package withdrawal

import (
	"context"
	"errors"
	"time"

	apperrors "cashon/internal/errors"
	"cashon/internal/events"
	"cashon/internal/logger"
	"cashon/internal/metrics"
	"cashon/internal/models"
	"cashon/internal/repositories"
	"cashon/internal/services/notification"
	"cashon/internal/services/payout"
	"cashon/internal/services/wallet"
)

// errLostRace signals a compare-and-set that another caller already won.
var errLostRace = errors.New("withdrawal state changed concurrently")

// Process debits the wallet and sends the payout. Only a pending withdrawal
// can be processed, so concurrent calls for one id debit at most once.
//
// An ambiguous provider outcome returns the withdrawal still in processing
// together with ErrProviderAmbiguous.
func (s *Service) Process(ctx context.Context, id uint) (*models.Withdrawal, error) {
	w, debit, err := s.claim(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status == models.WithdrawalFailed {
		metrics.RecordWithdrawalOutcome("failed")
		s.notify(ctx, notification.WithdrawalDeclined(w.UserID, w.Amount, accountName(w)))
		s.publish(ctx, events.TopicWithdrawalFailed, events.TypeWithdrawalFailed, w, reasonNoFund)
		logger.Warn().Uint("withdrawal_id", w.ID).Msg("withdrawal failed: insufficient balance")
		return w, nil
	}
	s.wallets.Committed(ctx, debit)

	pctx, cancel := context.WithTimeout(ctx, s.config.PayoutTimeout)
	result, perr := s.provider.Transfer(pctx, payout.TransferRequest{
		AccountNumber: w.BankAccount.AccountNumber,
		AccountName:   w.BankAccount.AccountName,
		BankCode:      w.BankAccount.BankCode,
		Amount:        w.Amount,
		Reference:     w.Reference,
	})
	cancel()

	switch {
	case perr == nil:
		meta := models.JSON{"provider_reference": result.ProviderReference}
		if len(result.Data) > 0 {
			meta["provider"] = result.Data
		}
		return s.complete(ctx, w, repositories.SettleInFlight, meta, nil)
	case apperrors.Is(perr, apperrors.ErrProviderDefinite):
		return s.refund(ctx, w, repositories.SettleInFlight, failureReason(perr), nil)
	default:
		return s.park(ctx, w, perr)
	}
}

// claim runs the first transaction: lock the withdrawal, check it is still
// pending, debit the wallet and move to processing. A balance that no longer
// covers the amount marks the withdrawal failed instead.
func (s *Service) claim(ctx context.Context, id uint) (*models.Withdrawal, *wallet.LedgerEntryResult, error) {
	var (
		claimed *models.Withdrawal
		debit   *wallet.LedgerEntryResult
	)
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		w, err := tx.Withdrawals.LockByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrWithdrawalNotFound) {
				return ErrWithdrawalNotFound
			}
			return err
		}
		if w.Status != models.WithdrawalPending {
			return apperrors.ErrAlreadyProcessed.WithDetails(map[string]string{"status": string(w.Status)})
		}

		account, err := tx.BankAccounts.GetByID(ctx, w.BankAccountID)
		if err != nil {
			return err
		}
		w.BankAccount = account

		res, err := s.wallets.ApplyLedgerEntryTx(ctx, tx, wallet.LedgerEntryRequest{
			WalletID:  w.WalletID,
			Type:      models.EntryDebit,
			Amount:    w.Amount,
			Source:    models.SourceWithdrawal,
			Reference: w.Reference,
			Note:      "Transfer to " + account.AccountName,
		})
		switch {
		case apperrors.Is(err, apperrors.ErrInsufficientFunds):
			w.Status = models.WithdrawalFailed
			w.Meta = w.Meta.Merge(map[string]interface{}{"reason": reasonNoFund})
		case err != nil:
			return err
		default:
			w.Status = models.WithdrawalProcessing
			w.Debited = true
			debit = res
		}
		if err := tx.Withdrawals.Update(ctx, w); err != nil {
			return err
		}
		claimed = w
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			err = apperrors.ErrStorage.WithError(err)
		}
		return nil, nil, err
	}
	return claimed, debit, nil
}

// complete moves a processing withdrawal to completed. audit, when set, is
// written in the same transaction.
func (s *Service) complete(ctx context.Context, w *models.Withdrawal, settle repositories.Settlement, meta models.JSON, audit *models.AdminAudit) (*models.Withdrawal, error) {
	merged := w.Meta.Merge(meta)
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		ok, err := tx.Withdrawals.MarkCompleted(ctx, w.ID, settle, merged)
		if err != nil {
			return err
		}
		if !ok {
			return errLostRace
		}
		if audit != nil {
			return tx.Audits.Create(ctx, audit)
		}
		return nil
	})
	if err != nil {
		if settle == repositories.SettleInFlight && errors.Is(err, errLostRace) {
			// The provider paid out but the withdrawal was resolved elsewhere.
			logger.Error().
				Uint("withdrawal_id", w.ID).
				Uint("user_id", w.UserID).
				Str("reference", w.Reference).
				Str("amount", w.Amount.StringFixed(2)).
				Interface("provider", meta).
				Msg("payout succeeded on an already resolved withdrawal")
		}
		return nil, s.transitionError(w, err)
	}

	w.Status = models.WithdrawalCompleted
	w.Meta = merged
	metrics.RecordWithdrawalOutcome("completed")
	s.notify(ctx, notification.WithdrawalSucceeded(w.UserID, w.Amount, accountName(w)))
	s.publish(ctx, events.TopicWithdrawalCompleted, events.TypeWithdrawalCompleted, w, "")

	logger.Info().Uint("withdrawal_id", w.ID).Str("reference", w.Reference).Msg("withdrawal completed")
	return w, nil
}

// refund credits the debited amount back and marks the withdrawal refunded.
// The refunded flag is flipped with a compare-and-set in the same transaction
// as the credit, so a withdrawal is refunded at most once.
func (s *Service) refund(ctx context.Context, w *models.Withdrawal, settle repositories.Settlement, reason string, audit *models.AdminAudit) (*models.Withdrawal, error) {
	merged := w.Meta.Merge(map[string]interface{}{"reason": reason})
	var credit *wallet.LedgerEntryResult
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		ok, err := tx.Withdrawals.MarkRefunded(ctx, w.ID, settle, merged)
		if err != nil {
			return err
		}
		if !ok {
			return errLostRace
		}
		res, err := s.wallets.ApplyLedgerEntryTx(ctx, tx, wallet.LedgerEntryRequest{
			WalletID:  w.WalletID,
			Type:      models.EntryCredit,
			Amount:    w.Amount,
			Source:    models.SourceRefund,
			Reference: w.RefundReference(),
			Note:      "Refund of failed Transfer to " + accountName(w),
		})
		if err != nil {
			return err
		}
		credit = res
		if audit != nil {
			return tx.Audits.Create(ctx, audit)
		}
		return nil
	})
	if err != nil {
		return nil, s.transitionError(w, err)
	}
	s.wallets.Committed(ctx, credit)

	w.Status = models.WithdrawalRefunded
	w.Refunded = true
	w.Meta = merged
	metrics.RecordWithdrawalOutcome("refunded")
	s.notify(ctx, notification.WithdrawalRefunded(w.UserID, w.Amount, accountName(w)))
	s.publish(ctx, events.TopicWithdrawalRefunded, events.TypeWithdrawalRefunded, w, reason)

	logger.Info().
		Uint("withdrawal_id", w.ID).
		Str("reference", w.Reference).
		Str("reason", reason).
		Msg("withdrawal refunded")
	return w, nil
}

// park records an ambiguous provider outcome. The withdrawal keeps its debit
// and stays in processing; stamping ambiguous_at is what makes it eligible
// for Reconcile.
func (s *Service) park(ctx context.Context, w *models.Withdrawal, perr error) (*models.Withdrawal, error) {
	at := time.Now().UTC()
	merged := w.Meta.Merge(map[string]interface{}{"last_error": perr.Error()})
	ok, err := s.store.Withdrawals.MarkAmbiguous(ctx, w.ID, at, merged)
	switch {
	case err != nil:
		logger.Error().Err(err).Uint("withdrawal_id", w.ID).Msg("failed to record ambiguous payout")
	case !ok:
		logger.Error().Uint("withdrawal_id", w.ID).Msg("ambiguous payout on a withdrawal no longer in flight")
	default:
		w.AmbiguousAt = &at
		w.Meta = merged
	}

	metrics.RecordWithdrawalOutcome("ambiguous")
	s.publish(ctx, events.TopicWithdrawalAmbiguous, events.TypeWithdrawalAmbiguous, w, perr.Error())
	logger.Error().
		Err(perr).
		Uint("withdrawal_id", w.ID).
		Str("reference", w.Reference).
		Str("amount", w.Amount.StringFixed(2)).
		Msg("payout outcome unknown, withdrawal needs reconciliation")

	if _, ok := apperrors.As(perr); !ok {
		perr = apperrors.ErrProviderAmbiguous.WithError(perr)
	}
	return w, perr
}

func (s *Service) transitionError(w *models.Withdrawal, err error) error {
	if errors.Is(err, errLostRace) {
		logger.Warn().Uint("withdrawal_id", w.ID).Msg("withdrawal already resolved by another caller")
		return apperrors.ErrInvalidTransition
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.ErrStorage.WithError(err)
}

func failureReason(err error) string {
	if de, ok := apperrors.As(err); ok && de.Message != "" {
		return de.Message
	}
	return err.Error()
}
