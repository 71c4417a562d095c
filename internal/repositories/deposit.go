package repositories

import (
	"context"
	"fmt"

	"cashon/internal/models"

	"gorm.io/gorm"
)

type DepositRepository interface {
	Create(ctx context.Context, deposit *models.Deposit) error
	GetByID(ctx context.Context, id uint) (*models.Deposit, error)
	GetByReference(ctx context.Context, reference string) (*models.Deposit, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Deposit, error)
}

type depositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) Create(ctx context.Context, deposit *models.Deposit) error {
	if err := r.db.WithContext(ctx).Create(deposit).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: deposit reference %s", ErrDuplicate, deposit.Reference)
		}
		return fmt.Errorf("failed to create deposit: %w", err)
	}
	return nil
}

func (r *depositRepository) GetByID(ctx context.Context, id uint) (*models.Deposit, error) {
	var d models.Deposit
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		if nf := notFound(err, ErrDepositNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}
	return &d, nil
}

func (r *depositRepository) GetByReference(ctx context.Context, reference string) (*models.Deposit, error) {
	var d models.Deposit
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&d).Error; err != nil {
		if nf := notFound(err, ErrDepositNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get deposit: %w", err)
	}
	return &d, nil
}

func (r *depositRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Deposit, error) {
	var out []models.Deposit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	return out, nil
}
