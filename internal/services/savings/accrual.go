package savings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cashon/internal/events"
	apperrors "cashon/internal/errors"
	"cashon/internal/logger"
	"cashon/internal/metrics"
	"cashon/internal/models"
	"cashon/internal/repositories"
	"cashon/internal/services/activity"
	"cashon/internal/services/notification"

	"github.com/shopspring/decimal"
)

// SweepResult counts what one sweep did.
type SweepResult struct {
	BatchID  string          `json:"batch_id"`
	Scanned  int             `json:"scanned"`
	Accrued  int             `json:"accrued"`
	Skipped  int             `json:"skipped"`
	Matured  int             `json:"matured"`
	Failed   int             `json:"failed"`
	Interest decimal.Decimal `json:"interest"`
}

// Accrue records this period's interest for an active saving. It returns
// ErrAlreadyAccrued when the period already has a row, and a nil interest
// when the saving's frequency earns nothing.
func (s *Service) Accrue(ctx context.Context, saving *models.Saving, now time.Time) (*models.SavingInterest, error) {
	return s.accrue(ctx, saving, now, batchID(now))
}

func (s *Service) accrue(ctx context.Context, saving *models.Saving, now time.Time, batch string) (*models.SavingInterest, error) {
	if saving.Status != models.SavingActive {
		return nil, apperrors.ErrSavingNotActive
	}
	amount := InterestFor(saving.Frequency, saving.Amount, s.config.AnnualRate)
	period := PeriodKey(saving.Frequency, now)
	if !amount.IsPositive() || period == "" {
		return nil, nil
	}

	interest := &models.SavingInterest{
		SavingID:      saving.ID,
		AccrualPeriod: period,
		Amount:        amount,
		AccruedAt:     now.UTC(),
	}
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Savings.CreateInterest(ctx, interest); err != nil {
			return err
		}
		return s.activities.RecordTx(ctx, tx, s.interestActivity(saving, interest, batch))
	})
	if err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, apperrors.ErrAlreadyAccrued
		}
		return nil, apperrors.ErrStorage.WithError(err)
	}

	metrics.RecordInterestAccrued(string(saving.Frequency), amount)
	s.notify(ctx, notification.InterestAccrued(saving.UserID, amount, savingName(saving), saving.Frequency))
	s.publish(ctx, events.TopicInterestAccrued, events.NewEvent(events.TypeInterestAccrued, eventSource, events.InterestPayload{
		SavingID:      saving.ID,
		UserID:        saving.UserID,
		AccrualPeriod: period,
		Amount:        amount.StringFixed(2),
		Frequency:     string(saving.Frequency),
	}).WithMetadata("batch_id", batch))

	logger.Debug().
		Uint("saving_id", saving.ID).
		Str("period", period).
		Str("amount", amount.StringFixed(2)).
		Msg("interest accrued")
	return interest, nil
}

func (s *Service) interestActivity(saving *models.Saving, interest *models.SavingInterest, batch string) *models.Activity {
	rate := s.config.AnnualRate
	a := &models.Activity{
		UserID:        saving.UserID,
		Type:          activity.TypeCredit,
		Category:      activity.CategorySavingsInterest,
		SubCategory:   string(saving.Frequency) + "_interest",
		Amount:        interest.Amount,
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.Zero,
		Title:         "Savings Interest Earned",
		Description:   fmt.Sprintf("Interest earned on '%s' savings plan", saving.Name),
		BatchID:       batch,
		Metadata: models.NewJSON(map[string]interface{}{
			"saving_id":              saving.ID,
			"saving_name":            saving.Name,
			"saving_interest_id":     interest.ID,
			"interest_rate":          rate.String(),
			"annual_rate_percentage": rate.Shift(2).String() + "%",
			"principal_amount":       saving.Amount.StringFixed(2),
			"frequency":              saving.Frequency,
			"calculation_method":     string(saving.Frequency) + "_compound",
			"accrual_period":         interest.AccrualPeriod,
			"days_since_start":       daysBetween(saving.StartsAt, interest.AccruedAt),
			"wallet_type":            models.WalletTypeSavings,
		}),
	}
	a.SetRelated(models.RelatedRef{Kind: models.RelatedSavingInterest, ID: interest.ID})
	return a
}

// Mature marks an active saving matured once its end date has passed. It
// reports whether this call made the change.
func (s *Service) Mature(ctx context.Context, saving *models.Saving, now time.Time) (bool, error) {
	if now.Before(saving.EndsAt) {
		return false, nil
	}
	changed, err := s.store.Savings.MarkMatured(ctx, saving.ID)
	if err != nil {
		return false, apperrors.ErrStorage.WithError(err)
	}
	if !changed {
		return false, nil
	}
	saving.Status = models.SavingMatured

	s.notify(ctx, notification.SavingMatured(saving.UserID, saving.Amount, savingName(saving)))
	s.publish(ctx, events.TopicSavingMatured, events.NewEvent(events.TypeSavingMatured, eventSource, events.SavingMaturedPayload{
		SavingID: saving.ID,
		UserID:   saving.UserID,
		Amount:   saving.Amount.StringFixed(2),
	}))
	logger.Info().Uint("saving_id", saving.ID).Uint("user_id", saving.UserID).Msg("saving matured")
	return true, nil
}

// Sweep accrues the current period's interest on every active saving and
// matures the ones past their end date. Running it again within the same
// period accrues nothing. Failures on one saving are logged and counted; the
// sweep only stops early when listing fails or ctx is done.
func (s *Service) Sweep(ctx context.Context, now time.Time) (*SweepResult, error) {
	result := &SweepResult{BatchID: batchID(now), Interest: decimal.Zero}
	log := logger.With("savings").With().Str("batch_id", result.BatchID).Logger()
	start := time.Now()

	var afterID uint
	for {
		page, err := s.store.Savings.ListActiveAfter(ctx, afterID, s.config.PageSize)
		if err != nil {
			return result, apperrors.ErrStorage.WithError(err)
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			saving := &page[i]
			afterID = saving.ID
			result.Scanned++

			interest, err := s.accrue(ctx, saving, now, result.BatchID)
			switch {
			case errors.Is(err, apperrors.ErrAlreadyAccrued) || (err == nil && interest == nil):
				result.Skipped++
			case err != nil:
				result.Failed++
				log.Error().Err(err).Uint("saving_id", saving.ID).Msg("interest accrual failed")
			default:
				result.Accrued++
				result.Interest = result.Interest.Add(interest.Amount)
			}

			matured, err := s.Mature(ctx, saving, now)
			if err != nil {
				result.Failed++
				log.Error().Err(err).Uint("saving_id", saving.ID).Msg("saving maturity update failed")
			} else if matured {
				result.Matured++
			}
		}

		if len(page) < s.config.PageSize {
			break
		}
	}

	log.Info().
		Int("scanned", result.Scanned).
		Int("accrued", result.Accrued).
		Int("skipped", result.Skipped).
		Int("matured", result.Matured).
		Int("failed", result.Failed).
		Str("interest", result.Interest.StringFixed(2)).
		Dur("duration", time.Since(start)).
		Msg("interest sweep finished")
	return result, nil
}

// Run sweeps immediately and then every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx, s.now()); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("interest sweep failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func savingName(saving *models.Saving) string {
	if saving.Name != "" {
		return saving.Name
	}
	return fmt.Sprintf("Saving #%d", saving.ID)
}
