package wallet

import (
	"context"
	"time"

	"cashon/internal/models"

	"github.com/shopspring/decimal"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration)            {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)                     {}
func (n *NoopMetricsCollector) RecordLedgerEntry(string, string, decimal.Decimal)        {}
func (n *NoopMetricsCollector) RecordError(string, string)                               {}
func (n *NoopMetricsCollector) RecordCacheHit(string)                                    {}
func (n *NoopMetricsCollector) RecordCacheMiss(string)                                   {}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) GetWallet(context.Context, uint) (*models.Wallet, error)       { return nil, nil }
func (NoopCache) WalletVersion(context.Context, uint) (int64, error)            { return 0, nil }
func (NoopCache) CacheWallet(context.Context, *models.Wallet, int64) (bool, error) {
	return false, nil
}
func (NoopCache) GetUserWallets(context.Context, uint) ([]models.Wallet, error) { return nil, nil }
func (NoopCache) UserWalletsVersion(context.Context, uint) (int64, error)       { return 0, nil }
func (NoopCache) CacheUserWallets(context.Context, uint, []models.Wallet, int64) (bool, error) {
	return false, nil
}
func (NoopCache) InvalidateWallet(context.Context, *models.Wallet) error { return nil }
