package wallet

import (
	"context"
	"time"

	"cashon/internal/models"
	"cashon/internal/repositories"

	"github.com/shopspring/decimal"
)

// Service defines the main wallet service interface
type Service interface {
	// Ledger mutation
	ApplyLedgerEntry(ctx context.Context, req LedgerEntryRequest) (*LedgerEntryResult, error)
	ApplyLedgerEntryTx(ctx context.Context, tx *repositories.Store, req LedgerEntryRequest) (*LedgerEntryResult, error)
	Committed(ctx context.Context, results ...*LedgerEntryResult)

	// Wallet management
	CreateWallets(ctx context.Context, userID uint) ([]models.Wallet, error)
	FundWallet(ctx context.Context, req FundRequest) (*LedgerEntryResult, error)

	// Reads
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	GetWalletByType(ctx context.Context, userID uint, walletType models.WalletType) (*models.Wallet, error)
	ListWallets(ctx context.Context, userID uint) ([]models.Wallet, error)
	GetBalance(ctx context.Context, walletID uint) (decimal.Decimal, error)
	GetTransactionHistory(ctx context.Context, walletID uint, limit, offset int) ([]models.WalletTransaction, error)
	VerifyLedger(ctx context.Context, walletID uint) (*LedgerReport, error)
}

// Cache is the wallet read cache. Misses return nil, nil.
//
// Writes are conditional: read the version before loading from the
// database and pass it back. The write is skipped (false, nil) when
// InvalidateWallet ran in between.
type Cache interface {
	GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error)
	WalletVersion(ctx context.Context, walletID uint) (int64, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet, version int64) (bool, error)
	GetUserWallets(ctx context.Context, userID uint) ([]models.Wallet, error)
	UserWalletsVersion(ctx context.Context, userID uint) (int64, error)
	CacheUserWallets(ctx context.Context, userID uint, wallets []models.Wallet, version int64) (bool, error)
	InvalidateWallet(ctx context.Context, wallet *models.Wallet) error
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordLedgerEntry(entryType, source string, amount decimal.Decimal)
	RecordError(operation, code string)
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
}
