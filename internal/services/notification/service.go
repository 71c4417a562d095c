// Package notification writes user inbox records. Delivery (push, email) is
// handled by whatever consumes the inbox.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "cashon/internal/errors"
	"cashon/internal/logger"
	"cashon/internal/models"
	"cashon/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Service struct {
	store *repositories.Store
}

func NewService(store *repositories.Store) *Service {
	if store == nil {
		panic("store is required")
	}
	return &Service{store: store}
}

// Send stores n outside any transaction. Failures are logged and returned;
// callers that already committed money movement treat them as non-fatal.
func (s *Service) Send(ctx context.Context, n *models.Notification) error {
	return s.SendTx(ctx, s.store, n)
}

// SendTx stores n through tx so it commits or rolls back with the caller.
func (s *Service) SendTx(ctx context.Context, tx *repositories.Store, n *models.Notification) error {
	if n.Date.IsZero() {
		n.Date = time.Now().UTC()
	}
	if err := tx.Notifications.Create(ctx, n); err != nil {
		logger.Error().Err(err).Uint("user_id", n.UserID).Str("title", n.Title).Msg("failed to store notification")
		return apperrors.ErrStorage.WithError(err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID uint, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	items, err := s.store.Notifications.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	return items, nil
}

func (s *Service) MarkRead(ctx context.Context, id, userID uint) error {
	err := s.store.Notifications.MarkRead(ctx, id, userID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotificationNotFound):
		return apperrors.ErrNotFound.WithMessage("notification not found")
	default:
		return apperrors.ErrStorage.WithError(err)
	}
}

func WithdrawalSucceeded(userID uint, amount decimal.Decimal, accountName string) *models.Notification {
	return &models.Notification{
		UserID:      userID,
		Title:       "Withdrawal Successful",
		Amount:      amount,
		Description: "Withdraw, To " + accountName,
	}
}

func WithdrawalRefunded(userID uint, amount decimal.Decimal, accountName string) *models.Notification {
	return &models.Notification{
		UserID:      userID,
		Title:       "Withdrawal Failed",
		Amount:      amount,
		Description: "Refunded, To " + accountName,
	}
}

// WithdrawalDeclined is sent when the balance no longer covered the amount
// at processing time. Nothing was debited.
func WithdrawalDeclined(userID uint, amount decimal.Decimal, accountName string) *models.Notification {
	return &models.Notification{
		UserID:      userID,
		Title:       "Withdrawal Failed",
		Amount:      amount,
		Description: "Insufficient balance, To " + accountName,
	}
}

func DepositReceived(userID uint, amount decimal.Decimal, senderName string) *models.Notification {
	return &models.Notification{
		UserID:      userID,
		Title:       "Transfer Received",
		Amount:      amount,
		Description: "Add Money, From " + senderName,
	}
}

func InterestAccrued(userID uint, amount decimal.Decimal, savingName string, frequency models.Frequency) *models.Notification {
	return &models.Notification{
		UserID:      userID,
		Title:       fmt.Sprintf("%s | Interest", savingName),
		Amount:      amount,
		Description: fmt.Sprintf("%s interest on %s", frequency, savingName),
	}
}

func SavingMatured(userID uint, amount decimal.Decimal, savingName string) *models.Notification {
	return &models.Notification{
		UserID:      userID,
		Title:       fmt.Sprintf("%s | Matured", savingName),
		Amount:      amount,
		Description: "Savings plan matured",
	}
}
