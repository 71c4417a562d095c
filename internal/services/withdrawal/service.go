// Package withdrawal moves money from a pocket wallet to a bank account.
//
// A withdrawal is created pending and processed in the background:
//
//	pending -> processing (wallet debited) -> completed
//	                                       -> refunded (provider declined, wallet credited back)
//	pending -> failed (insufficient balance at processing time, nothing debited)
//
// When the provider outcome is unknown the withdrawal stays in processing,
// is stamped ambiguous_at, and waits for an operator to reconcile it.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "cashon/internal/errors"
	"cashon/internal/events"
	"cashon/internal/logger"
	"cashon/internal/models"
	"cashon/internal/queue"
	"cashon/internal/repositories"
	"cashon/internal/services/payout"
	"cashon/internal/services/wallet"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPayoutTimeout = 30 * time.Second
	DefaultListLimit     = 20

	jobName      = "withdrawal.process"
	eventSource  = "withdrawal-service"
	reasonNoFund = "insufficient_funds"
)

var ErrBankAccountNotFound = apperrors.ErrNotFound.WithMessage("bank account not found")
var ErrWithdrawalNotFound = apperrors.ErrNotFound.WithMessage("withdrawal not found")

// Notifier stores user notifications.
type Notifier interface {
	Send(ctx context.Context, n *models.Notification) error
}

type Config struct {
	MinAmount     decimal.Decimal
	PayoutTimeout time.Duration
}

type CreateRequest struct {
	UserID        uint
	BankAccountID uint
	Amount        decimal.Decimal
}

type Service struct {
	store      *repositories.Store
	wallets    wallet.Service
	provider   payout.Provider
	notifier   Notifier
	publisher  events.Publisher
	dispatcher queue.Dispatcher
	config     Config
}

func NewService(
	store *repositories.Store,
	wallets wallet.Service,
	provider payout.Provider,
	notifier Notifier,
	publisher events.Publisher,
	dispatcher queue.Dispatcher,
	config Config,
) *Service {
	if store == nil {
		panic("store is required")
	}
	if wallets == nil {
		panic("wallet service is required")
	}
	if provider == nil {
		panic("payout provider is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if dispatcher == nil {
		dispatcher = queue.Inline{}
	}
	if config.MinAmount.IsZero() {
		config.MinAmount = decimal.NewFromInt(100)
	}
	if config.PayoutTimeout <= 0 {
		config.PayoutTimeout = DefaultPayoutTimeout
	}

	return &Service{
		store:      store,
		wallets:    wallets,
		provider:   provider,
		notifier:   notifier,
		publisher:  publisher,
		dispatcher: dispatcher,
		config:     config,
	}
}

// Create validates and stores a pending withdrawal, then queues it for
// processing. The balance is checked but not touched.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Withdrawal, error) {
	amount := req.Amount.Round(2)
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if amount.LessThan(s.config.MinAmount) {
		return nil, apperrors.ErrBelowMinimum.WithDetails(map[string]string{
			"minimum": s.config.MinAmount.StringFixed(2),
		})
	}

	account, err := s.store.BankAccounts.GetForUser(ctx, req.BankAccountID, req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrBankAccountNotFound) {
			return nil, ErrBankAccountNotFound
		}
		return nil, apperrors.ErrStorage.WithError(err)
	}

	pocket, err := s.wallets.GetWalletByType(ctx, req.UserID, models.WalletTypePocket)
	if err != nil {
		return nil, err
	}
	if pocket.Balance.LessThan(amount) {
		return nil, apperrors.ErrInsufficientFunds
	}

	w := &models.Withdrawal{
		UserID:        req.UserID,
		WalletID:      pocket.ID,
		BankAccountID: account.ID,
		Amount:        amount,
		Currency:      pocket.Currency,
		Reference:     fmt.Sprintf("%d_%s", req.UserID, uuid.NewString()),
		Status:        models.WithdrawalPending,
		Meta:          models.JSON{},
	}
	if err := s.store.Withdrawals.Create(ctx, w); err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	w.BankAccount = account

	logger.Info().
		Uint("withdrawal_id", w.ID).
		Uint("user_id", w.UserID).
		Str("reference", w.Reference).
		Str("amount", amount.StringFixed(2)).
		Msg("withdrawal created")

	s.enqueue(ctx, w.ID)
	return w, nil
}

// enqueue hands the withdrawal to the dispatcher. Processing errors are
// already recorded on the withdrawal, so only queueing failures leave it
// pending.
func (s *Service) enqueue(ctx context.Context, id uint) {
	err := s.dispatcher.Enqueue(ctx, queue.Job{
		Name: jobName,
		Key:  fmt.Sprintf("%s:%d", jobName, id),
		Run: func(ctx context.Context) error {
			_, err := s.Process(ctx, id)
			return err
		},
	})
	switch {
	case err == nil, errors.Is(err, queue.ErrDuplicateJob):
	case queue.IsJobError(err) && apperrors.Is(err, apperrors.ErrProviderAmbiguous):
		logger.Info().Uint("withdrawal_id", id).Msg("withdrawal processed, awaiting reconciliation")
	case queue.IsJobError(err):
		logger.Error().Err(err).Uint("withdrawal_id", id).Msg("withdrawal processing failed")
	default:
		logger.Warn().Err(err).Uint("withdrawal_id", id).Msg("withdrawal not queued, left pending")
	}
}

// ResumePending queues pending withdrawals last touched before cutoff. It
// picks up withdrawals whose job was lost to a full queue or a restart.
func (s *Service) ResumePending(ctx context.Context, before time.Time) (int, error) {
	pending, err := s.store.Withdrawals.ListByStatusBefore(ctx, models.WithdrawalPending, before)
	if err != nil {
		return 0, apperrors.ErrStorage.WithError(err)
	}
	for _, w := range pending {
		s.enqueue(ctx, w.ID)
	}
	return len(pending), nil
}

// Get returns a withdrawal owned by userID.
func (s *Service) Get(ctx context.Context, userID, id uint) (*models.Withdrawal, error) {
	w, err := s.store.Withdrawals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrWithdrawalNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, apperrors.ErrStorage.WithError(err)
	}
	if w.UserID != userID {
		return nil, ErrWithdrawalNotFound
	}
	return w, nil
}

func (s *Service) List(ctx context.Context, userID uint, limit, offset int) ([]models.Withdrawal, error) {
	if limit <= 0 || limit > 100 {
		limit = DefaultListLimit
	}
	out, err := s.store.Withdrawals.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	return out, nil
}

// ListStuck returns withdrawals that have sat in processing for longer than
// olderThan. Only those with AmbiguousAt set can be reconciled; the rest
// still have a payout call in flight.
func (s *Service) ListStuck(ctx context.Context, olderThan time.Duration) ([]models.Withdrawal, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	out, err := s.store.Withdrawals.ListByStatusBefore(ctx, models.WithdrawalProcessing, cutoff)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, topic, eventType string, w *models.Withdrawal, reason string) {
	event := events.NewEvent(eventType, eventSource, events.WithdrawalPayload{
		WithdrawalID: w.ID,
		UserID:       w.UserID,
		Reference:    w.Reference,
		Amount:       w.Amount.StringFixed(2),
		Currency:     w.Currency,
		Status:       string(w.Status),
		Reason:       reason,
	})
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		logger.Warn().Err(err).Str("topic", topic).Uint("withdrawal_id", w.ID).Msg("failed to publish withdrawal event")
	}
}

func (s *Service) notify(ctx context.Context, n *models.Notification) {
	if err := s.notifier.Send(ctx, n); err != nil {
		logger.Warn().Err(err).Uint("user_id", n.UserID).Msg("failed to notify user")
	}
}

func accountName(w *models.Withdrawal) string {
	if w.BankAccount != nil {
		return w.BankAccount.AccountName
	}
	return ""
}
