package repositories

import (
	"context"
	"fmt"
	"time"

	"cashon/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SavingRepository interface {
	Create(ctx context.Context, saving *models.Saving) error
	GetByID(ctx context.Context, id uint) (*models.Saving, error)
	GetForUser(ctx context.Context, id, userID uint) (*models.Saving, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Saving, error)
	// ListActiveAfter pages through active savings ordered by id.
	ListActiveAfter(ctx context.Context, afterID uint, limit int) ([]models.Saving, error)
	// MarkMatured moves an active saving to matured and reports whether it changed.
	MarkMatured(ctx context.Context, id uint) (bool, error)

	CreateInterest(ctx context.Context, interest *models.SavingInterest) error
	GetInterestByID(ctx context.Context, id uint) (*models.SavingInterest, error)
	ListInterest(ctx context.Context, savingID uint) ([]models.SavingInterest, error)
	SumInterest(ctx context.Context, savingID uint) (decimal.Decimal, error)
	SumInterestByUser(ctx context.Context, userID uint) (decimal.Decimal, error)
	SumPrincipalByUser(ctx context.Context, userID uint, status models.SavingStatus) (decimal.Decimal, error)
}

type savingRepository struct {
	db *gorm.DB
}

func NewSavingRepository(db *gorm.DB) SavingRepository {
	return &savingRepository{db: db}
}

func (r *savingRepository) Create(ctx context.Context, saving *models.Saving) error {
	if err := r.db.WithContext(ctx).Create(saving).Error; err != nil {
		return fmt.Errorf("failed to create saving: %w", err)
	}
	return nil
}

func (r *savingRepository) GetByID(ctx context.Context, id uint) (*models.Saving, error) {
	var s models.Saving
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if nf := notFound(err, ErrSavingNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get saving: %w", err)
	}
	return &s, nil
}

func (r *savingRepository) GetForUser(ctx context.Context, id, userID uint) (*models.Saving, error) {
	var s models.Saving
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&s).Error; err != nil {
		if nf := notFound(err, ErrSavingNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get saving: %w", err)
	}
	return &s, nil
}

func (r *savingRepository) ListByUser(ctx context.Context, userID uint) ([]models.Saving, error) {
	var out []models.Saving
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list savings: %w", err)
	}
	return out, nil
}

func (r *savingRepository) ListActiveAfter(ctx context.Context, afterID uint, limit int) ([]models.Saving, error) {
	var out []models.Saving
	err := r.db.WithContext(ctx).
		Where("status = ? AND id > ?", models.SavingActive, afterID).
		Order("id").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active savings: %w", err)
	}
	return out, nil
}

func (r *savingRepository) MarkMatured(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Saving{}).
		Where("id = ? AND status = ?", id, models.SavingActive).
		Updates(map[string]interface{}{
			"status":     models.SavingMatured,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark saving matured: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *savingRepository) CreateInterest(ctx context.Context, interest *models.SavingInterest) error {
	if err := r.db.WithContext(ctx).Create(interest).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: saving %d period %s", ErrDuplicate, interest.SavingID, interest.AccrualPeriod)
		}
		return fmt.Errorf("failed to create saving interest: %w", err)
	}
	return nil
}

func (r *savingRepository) GetInterestByID(ctx context.Context, id uint) (*models.SavingInterest, error) {
	var si models.SavingInterest
	if err := r.db.WithContext(ctx).First(&si, id).Error; err != nil {
		if nf := notFound(err, ErrSavingNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get saving interest: %w", err)
	}
	return &si, nil
}

func (r *savingRepository) ListInterest(ctx context.Context, savingID uint) ([]models.SavingInterest, error) {
	var out []models.SavingInterest
	if err := r.db.WithContext(ctx).Where("saving_id = ?", savingID).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list saving interest: %w", err)
	}
	return out, nil
}

func (r *savingRepository) SumInterest(ctx context.Context, savingID uint) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&models.SavingInterest{}).Where("saving_id = ?", savingID)
	return sumColumn(q, "amount")
}

func (r *savingRepository) SumInterestByUser(ctx context.Context, userID uint) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).
		Model(&models.SavingInterest{}).
		Joins("JOIN savings ON savings.id = saving_interests.saving_id").
		Where("savings.user_id = ?", userID)
	return sumColumn(q, "saving_interests.amount")
}

func (r *savingRepository) SumPrincipalByUser(ctx context.Context, userID uint, status models.SavingStatus) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).Model(&models.Saving{}).Where("user_id = ? AND status = ?", userID, status)
	return sumColumn(q, "amount")
}
