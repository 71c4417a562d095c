package repositories

import (
	"context"

	"cashon/internal/models"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet-related database operations
type WalletRepository interface {
	// Core wallet operations
	Create(ctx context.Context, wallet *models.Wallet) error
	FirstOrCreate(ctx context.Context, userID uint, walletType models.WalletType, currency string) (*models.Wallet, error)
	GetByID(ctx context.Context, id uint) (*models.Wallet, error)
	GetByUserAndType(ctx context.Context, userID uint, walletType models.WalletType) (*models.Wallet, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Wallet, error)

	// Locked reads, only meaningful inside a transaction
	LockByID(ctx context.Context, id uint) (*models.Wallet, error)
	LockByUserAndType(ctx context.Context, userID uint, walletType models.WalletType) (*models.Wallet, error)
	UpdateBalance(ctx context.Context, wallet *models.Wallet) error

	// Ledger operations
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) error
	GetTransactionByID(ctx context.Context, id uint) (*models.WalletTransaction, error)
	GetTransactionByReference(ctx context.Context, reference string) (*models.WalletTransaction, error)
	GetTransactionHistory(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error)
	SumEntries(ctx context.Context, walletID uint) (*EntryTotals, error)
	// ListEntriesAfter pages through a wallet's entries in id order.
	ListEntriesAfter(ctx context.Context, walletID, afterID uint, limit int) ([]models.WalletTransaction, error)
}

// EntryTotals aggregates a wallet's ledger for reconciliation.
type EntryTotals struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
	Count   int64
}

// Net is credits minus debits, which must equal the wallet balance.
func (t *EntryTotals) Net() decimal.Decimal {
	return t.Credits.Sub(t.Debits)
}
