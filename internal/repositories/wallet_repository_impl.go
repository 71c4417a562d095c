package repositories

import (
	"context"
	"fmt"
	"time"

	"cashon/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: wallet %s for user %d", ErrDuplicate, wallet.Type, wallet.UserID)
		}
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) FirstOrCreate(ctx context.Context, userID uint, walletType models.WalletType, currency string) (*models.Wallet, error) {
	wallet, err := r.GetByUserAndType(ctx, userID, walletType)
	if err == nil {
		return wallet, nil
	}
	if err != ErrWalletNotFound {
		return nil, err
	}

	wallet = &models.Wallet{
		UserID:           userID,
		Type:             walletType,
		Balance:          decimal.Zero,
		AvailableBalance: decimal.Zero,
		Currency:         currency,
	}
	if err := r.Create(ctx, wallet); err != nil {
		// Lost a creation race, the other writer's row is the wallet.
		if IsUniqueViolation(err) {
			return r.GetByUserAndType(ctx, userID, walletType)
		}
		return nil, err
	}
	return wallet, nil
}

func (r *walletRepository) GetByID(ctx context.Context, id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).First(&wallet, id).Error; err != nil {
		if nf := notFound(err, ErrWalletNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserAndType(ctx context.Context, userID uint, walletType models.WalletType) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, walletType).
		First(&wallet).Error
	if err != nil {
		if nf := notFound(err, ErrWalletNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) ListByUser(ctx context.Context, userID uint) ([]models.Wallet, error) {
	var wallets []models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

func (r *walletRepository) LockByID(ctx context.Context, id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&wallet, id).Error
	if err != nil {
		if nf := notFound(err, ErrWalletNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) LockByUserAndType(ctx context.Context, userID uint, walletType models.WalletType) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND type = ?", userID, walletType).
		First(&wallet).Error
	if err != nil {
		if nf := notFound(err, ErrWalletNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) UpdateBalance(ctx context.Context, wallet *models.Wallet) error {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"balance":           wallet.Balance,
			"available_balance": wallet.AvailableBalance,
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet balance: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: reference %s", ErrDuplicate, txn.Reference)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *walletRepository) GetTransactionByID(ctx context.Context, id uint) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	if err := r.db.WithContext(ctx).First(&txn, id).Error; err != nil {
		if nf := notFound(err, ErrTransactionNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *walletRepository) GetTransactionByReference(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&txn).Error; err != nil {
		if nf := notFound(err, ErrTransactionNotFound); nf != nil {
			return nil, nf
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *walletRepository) GetTransactionHistory(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error) {
	var history []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return history, nil
}

func (r *walletRepository) SumEntries(ctx context.Context, walletID uint) (*EntryTotals, error) {
	totals := &EntryTotals{}
	base := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).Where("wallet_id = ?", walletID)

	if err := base.Session(&gorm.Session{}).Count(&totals.Count).Error; err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}

	var err error
	if totals.Credits, err = sumColumn(base.Session(&gorm.Session{}).Where("type = ?", models.EntryCredit), "amount"); err != nil {
		return nil, err
	}
	if totals.Debits, err = sumColumn(base.Session(&gorm.Session{}).Where("type = ?", models.EntryDebit), "amount"); err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *walletRepository) ListEntriesAfter(ctx context.Context, walletID, afterID uint, limit int) ([]models.WalletTransaction, error) {
	var entries []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ? AND id > ?", walletID, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

// sumColumn returns COALESCE(SUM(column), 0) rounded to cents.
func sumColumn(q *gorm.DB, column string) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := q.Select("COALESCE(SUM(" + column + "), 0)").Row().Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s: %w", column, err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(2), nil
}
