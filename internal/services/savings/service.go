// Package savings locks pocket funds into fixed-term plans and accrues
// interest on them.
//
// Interest is tracked in saving_interests, one row per saving per accrual
// period, and never touches wallet balances. A plan matures once its end date
// passes; maturity is a status change only.
package savings

import (
	"context"
	"errors"
	"strings"
	"time"

	"cashon/internal/events"
	apperrors "cashon/internal/errors"
	"cashon/internal/logger"
	"cashon/internal/models"
	"cashon/internal/repositories"
	"cashon/internal/services/activity"
	"cashon/internal/services/wallet"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	eventSource = "cashon.savings"

	minNameLength   = 3
	defaultPageSize = 100
)

var ErrSavingNotFound = apperrors.ErrNotFound.WithMessage("saving not found")

type Notifier interface {
	Send(ctx context.Context, n *models.Notification) error
}

type ActivityRecorder interface {
	RecordTx(ctx context.Context, tx *repositories.Store, a *models.Activity) error
}

type Config struct {
	AnnualRate decimal.Decimal
	// PageSize bounds how many savings a sweep loads at once.
	PageSize int
}

type CreateRequest struct {
	UserID       uint             `json:"-"`
	Name         string           `json:"name"`
	Amount       decimal.Decimal  `json:"amount"`
	Frequency    models.Frequency `json:"frequency"`
	Duration     int              `json:"duration"`
	AutoRollover bool             `json:"auto_rollover"`
}

// Summary totals a user's active plans.
type Summary struct {
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
}

// Detail is a saving with its accrued interest.
type Detail struct {
	Saving    *models.Saving          `json:"saving"`
	Interest  decimal.Decimal         `json:"interest"`
	Accruals  []models.SavingInterest `json:"accruals,omitempty"`
	DaysLeft  int                     `json:"days_left"`
	Projected decimal.Decimal         `json:"projected_interest"`
}

type Service struct {
	store      *repositories.Store
	wallets    wallet.Service
	notifier   Notifier
	activities ActivityRecorder
	publisher  events.Publisher
	config     Config
	now        func() time.Time
}

func NewService(
	store *repositories.Store,
	wallets wallet.Service,
	notifier Notifier,
	activities ActivityRecorder,
	publisher events.Publisher,
	config Config,
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
	if config.AnnualRate.IsZero() {
		config.AnnualRate = decimal.NewFromFloat(0.10)
	}
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	return &Service{
		store:      store,
		wallets:    wallets,
		notifier:   notifier,
		activities: activities,
		publisher:  publisher,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r CreateRequest) validate() (decimal.Decimal, error) {
	if r.UserID == 0 {
		return decimal.Zero, apperrors.ErrValidation.WithMessage("user id is required")
	}
	if len(strings.TrimSpace(r.Name)) < minNameLength {
		return decimal.Zero, apperrors.ErrValidation.WithMessage("name must be at least 3 characters")
	}
	amount := r.Amount.Round(2)
	if amount.LessThan(decimal.NewFromInt(1)) {
		return decimal.Zero, apperrors.ErrInvalidAmount.WithMessage("amount must be at least 1")
	}
	if !ValidFrequency(r.Frequency) {
		return decimal.Zero, apperrors.ErrValidation.WithMessage("frequency must be daily, weekly or monthly")
	}
	if r.Duration < 1 {
		return decimal.Zero, apperrors.ErrValidation.WithMessage("duration must be at least 1 day")
	}
	return amount, nil
}

// Create debits the user's pocket wallet and opens a plan for Duration days.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Saving, error) {
	amount, err := req.validate()
	if err != nil {
		return nil, err
	}

	pocket, err := s.wallets.GetWalletByType(ctx, req.UserID, models.WalletTypePocket)
	if err != nil {
		return nil, err
	}
	if pocket.Balance.LessThan(amount) {
		return nil, apperrors.ErrInsufficientFunds.WithMessage("Insufficient funds in pocket wallet.")
	}

	now := s.now()
	saving := &models.Saving{
		UserID:       req.UserID,
		Name:         strings.TrimSpace(req.Name),
		Amount:       amount,
		Frequency:    req.Frequency,
		Duration:     req.Duration,
		Status:       models.SavingActive,
		StartsAt:     now,
		EndsAt:       now.AddDate(0, 0, req.Duration),
		AutoRollover: req.AutoRollover,
	}

	var debit *wallet.LedgerEntryResult
	err = s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		res, err := s.wallets.ApplyLedgerEntryTx(ctx, tx, wallet.LedgerEntryRequest{
			WalletID:  pocket.ID,
			Type:      models.EntryDebit,
			Amount:    amount,
			Source:    models.SourceSavingsLock,
			Reference: "saving_" + uuid.NewString(),
			Note:      "Savings lock: " + saving.Name,
		})
		if err != nil {
			return err
		}
		debit = res

		if err := tx.Savings.Create(ctx, saving); err != nil {
			return err
		}

		a := &models.Activity{
			UserID:        req.UserID,
			Type:          activity.TypeDebit,
			Category:      activity.CategorySavingsLock,
			SubCategory:   string(saving.Frequency) + "_savings",
			Amount:        amount,
			Currency:      pocket.Currency,
			BalanceBefore: res.PreviousBalance,
			BalanceAfter:  res.NewBalance,
			Title:         "Savings Plan Created",
			Description:   "Locked ₦" + formatAmount(amount) + " in '" + saving.Name + "' savings plan",
			Metadata: models.NewJSON(map[string]interface{}{
				"saving_id":     saving.ID,
				"saving_name":   saving.Name,
				"frequency":     saving.Frequency,
				"duration":      saving.Duration,
				"auto_rollover": saving.AutoRollover,
				"starts_at":     saving.StartsAt.Format(time.RFC3339),
				"ends_at":       saving.EndsAt.Format(time.RFC3339),
				"wallet_type":   models.WalletTypePocket,
			}),
		}
		a.SetRelated(models.RelatedRef{Kind: models.RelatedSaving, ID: saving.ID})
		return s.activities.RecordTx(ctx, tx, a)
	})
	if err != nil {
		var de *apperrors.DomainError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, apperrors.ErrStorage.WithError(err)
	}
	s.wallets.Committed(ctx, debit)

	logger.Info().
		Uint("user_id", req.UserID).
		Uint("saving_id", saving.ID).
		Str("amount", amount.StringFixed(2)).
		Str("frequency", string(saving.Frequency)).
		Msg("savings plan created")
	return saving, nil
}

func (s *Service) List(ctx context.Context, userID uint) ([]models.Saving, error) {
	out, err := s.store.Savings.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	return out, nil
}

// Get returns one of the user's plans with its accrual history.
func (s *Service) Get(ctx context.Context, userID, savingID uint) (*Detail, error) {
	saving, err := s.store.Savings.GetForUser(ctx, savingID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSavingNotFound) {
			return nil, ErrSavingNotFound
		}
		return nil, apperrors.ErrStorage.WithError(err)
	}
	accruals, err := s.store.Savings.ListInterest(ctx, saving.ID)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}

	total := decimal.Zero
	for _, a := range accruals {
		total = total.Add(a.Amount)
	}

	now := s.now()
	detail := &Detail{Saving: saving, Interest: total, Accruals: accruals, Projected: decimal.Zero}
	if saving.Status == models.SavingActive {
		detail.DaysLeft = daysBetween(now, saving.EndsAt)
		detail.Projected = s.projected(saving, now)
	}
	return detail, nil
}

// Summary totals principal and interest across the user's active plans.
func (s *Service) Summary(ctx context.Context, userID uint) (*Summary, error) {
	principal, err := s.store.Savings.SumPrincipalByUser(ctx, userID, models.SavingActive)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	interest, err := s.store.Savings.SumInterestByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	return &Summary{
		Principal: principal,
		Interest:  interest,
		Total:     principal.Add(interest),
	}, nil
}

// projected estimates the interest still to accrue before the plan ends.
func (s *Service) projected(saving *models.Saving, now time.Time) decimal.Decimal {
	per := InterestFor(saving.Frequency, saving.Amount, s.config.AnnualRate)
	if per.IsZero() {
		return decimal.Zero
	}
	days := daysBetween(now, saving.EndsAt)
	var remaining int
	switch saving.Frequency {
	case models.FrequencyDaily:
		remaining = days
	case models.FrequencyWeekly:
		remaining = days / 7
	case models.FrequencyMonthly:
		remaining = days / 30
	}
	return per.Mul(decimal.NewFromInt(int64(remaining)))
}

func (s *Service) publish(ctx context.Context, topic string, event *events.Event) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		logger.Warn().Err(err).Str("topic", topic).Msg("failed to publish savings event")
	}
}

func (s *Service) notify(ctx context.Context, n *models.Notification) {
	if err := s.notifier.Send(ctx, n); err != nil {
		logger.Warn().Err(err).Uint("user_id", n.UserID).Msg("failed to send savings notification")
	}
}

func formatAmount(amount decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", amount.InexactFloat64())
}
