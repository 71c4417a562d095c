// Package deposit credits wallets from payment provider webhooks.
package deposit

import (
	"context"
	"errors"
	"strings"

	apperrors "cashon/internal/errors"
	"cashon/internal/events"
	"cashon/internal/logger"
	"cashon/internal/metrics"
	"cashon/internal/models"
	"cashon/internal/repositories"
	"cashon/internal/services/activity"
	"cashon/internal/services/notification"
	"cashon/internal/services/wallet"
)

const (
	eventSource = "deposit-service"

	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrDepositNotFound = apperrors.ErrNotFound.WithMessage("deposit not found")

type Notifier interface {
	Send(ctx context.Context, n *models.Notification) error
}

type ActivityRecorder interface {
	RecordTx(ctx context.Context, tx *repositories.Store, a *models.Activity) error
}

type Service struct {
	store      *repositories.Store
	wallets    wallet.Service
	notifier   Notifier
	activities ActivityRecorder
	publisher  events.Publisher
}

func NewService(
	store *repositories.Store,
	wallets wallet.Service,
	notifier Notifier,
	activities ActivityRecorder,
	publisher events.Publisher,
) *Service {
	if store == nil {
		panic("store is required")
	}
	if wallets == nil {
		panic("wallet service is required")
	}
	if notifier == nil {
		panic("notifier is required")
	}
	if activities == nil {
		panic("activity recorder is required")
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		store:      store,
		wallets:    wallets,
		notifier:   notifier,
		activities: activities,
		publisher:  publisher,
	}
}

// Ingest applies one webhook event. Replays of a reference are acknowledged as
// duplicates without writing. Events that do not apply (other statuses or
// channels, unknown customers) are acknowledged without writing. The only
// error returned is ErrMalformedEvent.
func (s *Service) Ingest(ctx context.Context, ev *Event) (Ack, error) {
	if ev == nil || strings.TrimSpace(ev.Event) == "" || ev.Data == nil {
		metrics.RecordDeposit("malformed")
		return Ack{}, apperrors.ErrMalformedEvent
	}

	log := logger.With("deposit").With().Str("event", ev.Event).Str("reference", ev.Data.Reference).Logger()
	log.Info().Msg("webhook received")

	if ev.Event != EventTransaction {
		log.Warn().Msg("ignoring unsupported webhook event")
		metrics.RecordDeposit("ignored")
		return ackSuccess(), nil
	}

	data := ev.Data
	if strings.TrimSpace(data.Reference) == "" {
		metrics.RecordDeposit("malformed")
		return Ack{}, apperrors.ErrMalformedEvent.WithMessage("data.reference is required")
	}

	if _, err := s.store.Deposits.GetByReference(ctx, data.Reference); err == nil {
		log.Info().Msg("duplicate deposit webhook")
		metrics.RecordDeposit("duplicate")
		return ackDuplicate(), nil
	} else if !errors.Is(err, repositories.ErrDepositNotFound) {
		log.Error().Err(err).Msg("deposit lookup failed")
		metrics.RecordDeposit("error")
		return ackSuccess(), nil
	}

	if data.Status != StatusSuccess || data.Channel != ChannelBank {
		log.Info().Str("status", data.Status).Str("channel", data.Channel).Msg("deposit not applicable")
		metrics.RecordDeposit("ignored")
		return ackSuccess(), nil
	}
	amount := data.Amount.Round(2)
	if !amount.IsPositive() {
		log.Warn().Str("amount", data.Amount.String()).Msg("deposit with non-positive amount")
		metrics.RecordDeposit("ignored")
		return ackSuccess(), nil
	}
	if data.CustomerInfo == nil || strings.TrimSpace(data.CustomerInfo.Email) == "" {
		log.Warn().Msg("deposit without customer email")
		metrics.RecordDeposit("ignored")
		return ackSuccess(), nil
	}

	user, err := s.store.Users.GetByEmail(ctx, data.CustomerInfo.Email)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			log.Error().Err(err).Msg("user lookup failed")
		} else {
			log.Warn().Str("email", data.CustomerInfo.Email).Msg("deposit for unknown customer")
		}
		metrics.RecordDeposit("ignored")
		return ackSuccess(), nil
	}

	pocket, err := s.store.Wallets.GetByUserAndType(ctx, user.ID, models.WalletTypePocket)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("deposit for user without pocket wallet")
		metrics.RecordDeposit("ignored")
		return ackSuccess(), nil
	}

	details := ev.senderDetails()
	sender := senderName(details)
	currency := data.Currency
	if currency == "" {
		currency = pocket.Currency
	}

	deposit := &models.Deposit{
		UserID:    user.ID,
		WalletID:  pocket.ID,
		Amount:    amount,
		Currency:  currency,
		Reference: data.Reference,
		Status:    models.DepositSuccessful,
		Meta:      models.NewJSON(details),
	}

	var credit *wallet.LedgerEntryResult
	err = s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Deposits.Create(ctx, deposit); err != nil {
			return err
		}
		res, err := s.wallets.ApplyLedgerEntryTx(ctx, tx, wallet.LedgerEntryRequest{
			WalletID:  pocket.ID,
			Type:      models.EntryCredit,
			Amount:    amount,
			Source:    models.SourceDeposit,
			Reference: deposit.Reference,
			Note:      "Deposit successful from " + sender,
		})
		if err != nil {
			return err
		}
		credit = res

		a := &models.Activity{
			UserID:        user.ID,
			Type:          activity.TypeCredit,
			Category:      activity.CategoryDeposit,
			Amount:        amount,
			Currency:      currency,
			BalanceBefore: res.PreviousBalance,
			BalanceAfter:  res.NewBalance,
			Title:         "Transfer Received",
			Description:   "Add Money, From " + sender,
		}
		a.SetRelated(models.RelatedRef{Kind: models.RelatedDeposit, ID: deposit.ID})
		return s.activities.RecordTx(ctx, tx, a)
	})
	if err != nil {
		if repositories.IsUniqueViolation(err) || apperrors.Is(err, apperrors.ErrDuplicateReference) {
			log.Info().Msg("duplicate deposit webhook lost insert race")
			metrics.RecordDeposit("duplicate")
			return ackDuplicate(), nil
		}
		log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to apply deposit")
		metrics.RecordDeposit("error")
		return ackSuccess(), nil
	}
	s.wallets.Committed(ctx, credit)
	metrics.RecordDeposit("credited")

	if err := s.notifier.Send(ctx, notification.DepositReceived(user.ID, amount, sender)); err != nil {
		log.Warn().Err(err).Msg("failed to notify deposit")
	}

	event := events.NewEvent(events.TypeDepositCredited, eventSource, events.DepositPayload{
		DepositID:  deposit.ID,
		UserID:     user.ID,
		WalletID:   pocket.ID,
		Reference:  deposit.Reference,
		Amount:     amount.StringFixed(2),
		Currency:   currency,
		NewBalance: credit.NewBalance.StringFixed(2),
	}).WithMetadata("provider", "cashonrails")
	if err := s.publisher.Publish(ctx, events.TopicDepositCredited, event); err != nil {
		log.Warn().Err(err).Msg("failed to publish deposit event")
	}

	log.Info().
		Uint("user_id", user.ID).
		Str("amount", amount.StringFixed(2)).
		Str("new_balance", credit.NewBalance.StringFixed(2)).
		Msg("deposit credited")
	return ackSuccess(), nil
}

// List returns the user's deposits, newest first.
func (s *Service) List(ctx context.Context, userID uint, limit, offset int) ([]models.Deposit, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.store.Deposits.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	return out, nil
}

// Get returns a deposit owned by userID. Other users' deposits read as not found.
func (s *Service) Get(ctx context.Context, userID, id uint) (*models.Deposit, error) {
	d, err := s.store.Deposits.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDepositNotFound) {
			return nil, ErrDepositNotFound
		}
		return nil, apperrors.ErrStorage.WithError(err)
	}
	if d.UserID != userID {
		return nil, ErrDepositNotFound
	}
	return d, nil
}
