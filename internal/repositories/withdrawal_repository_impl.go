package repositories

import (
	"context"
	"fmt"
	"time"

	"cashon/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type withdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepository{db: db}
}

// withDeleted keeps soft deleted bank accounts visible to the withdrawals
// that were created against them.
func withDeleted(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

func (r *withdrawalRepository) Create(ctx context.Context, withdrawal *models.Withdrawal) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(withdrawal).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: withdrawal reference %s", ErrDuplicate, withdrawal.Reference)
		}
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return nil
}

func (r *withdrawalRepository) GetByID(ctx context.Context, id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.WithContext(ctx).Preload("BankAccount", withDeleted).First(&w, id).Error; err != nil {
		if nf := notFound(err, ErrWithdrawalNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return &w, nil
}

func (r *withdrawalRepository) GetByReference(ctx context.Context, reference string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.db.WithContext(ctx).Preload("BankAccount", withDeleted).Where("reference = ?", reference).First(&w).Error; err != nil {
		if nf := notFound(err, ErrWithdrawalNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get withdrawal: %w", err)
	}
	return &w, nil
}

func (r *withdrawalRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Withdrawal, error) {
	var out []models.Withdrawal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return out, nil
}

func (r *withdrawalRepository) ListByStatusBefore(ctx context.Context, status models.WithdrawalStatus, before time.Time) ([]models.Withdrawal, error) {
	var out []models.Withdrawal
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", status, before).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return out, nil
}

func (r *withdrawalRepository) LockByID(ctx context.Context, id uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&w, id).Error
	if err != nil {
		if nf := notFound(err, ErrWithdrawalNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to lock withdrawal: %w", err)
	}
	return &w, nil
}

func (r *withdrawalRepository) Update(ctx context.Context, withdrawal *models.Withdrawal) error {
	withdrawal.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ?", withdrawal.ID).
		Updates(map[string]interface{}{
			"status":     withdrawal.Status,
			"debited":    withdrawal.Debited,
			"refunded":   withdrawal.Refunded,
			"meta":       withdrawal.Meta,
			"updated_at": withdrawal.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update withdrawal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWithdrawalNotFound
	}
	return nil
}

// settling scopes an update to debited processing withdrawals of one kind.
func (r *withdrawalRepository) settling(ctx context.Context, id uint, settle Settlement) *gorm.DB {
	q := r.db.WithContext(ctx).
		Model(&models.Withdrawal{}).
		Where("id = ? AND status = ? AND debited = ?", id, models.WithdrawalProcessing, true)
	if settle == SettleParked {
		return q.Where("ambiguous_at IS NOT NULL")
	}
	return q.Where("ambiguous_at IS NULL")
}

func (r *withdrawalRepository) MarkAmbiguous(ctx context.Context, id uint, at time.Time, meta models.JSON) (bool, error) {
	updates := map[string]interface{}{
		"ambiguous_at": at,
		"updated_at":   time.Now().UTC(),
	}
	if meta != nil {
		updates["meta"] = meta
	}
	result := r.settling(ctx, id, SettleInFlight).Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark withdrawal ambiguous: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *withdrawalRepository) MarkCompleted(ctx context.Context, id uint, settle Settlement, meta models.JSON) (bool, error) {
	updates := map[string]interface{}{
		"status":     models.WithdrawalCompleted,
		"updated_at": time.Now().UTC(),
	}
	if meta != nil {
		updates["meta"] = meta
	}
	result := r.settling(ctx, id, settle).Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to complete withdrawal: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *withdrawalRepository) MarkRefunded(ctx context.Context, id uint, settle Settlement, meta models.JSON) (bool, error) {
	updates := map[string]interface{}{
		"status":     models.WithdrawalRefunded,
		"refunded":   true,
		"updated_at": time.Now().UTC(),
	}
	if meta != nil {
		updates["meta"] = meta
	}
	result := r.settling(ctx, id, settle).
		Where("refunded = ?", false).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark withdrawal refunded: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}
