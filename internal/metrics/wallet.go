package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletCollector satisfies wallet.MetricsCollector.
type WalletCollector struct{}

func NewWalletCollector() *WalletCollector {
	return &WalletCollector{}
}

func (WalletCollector) RecordOperationDuration(operation string, d time.Duration) {
	operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (WalletCollector) RecordOperationResult(operation, result string) {
	operationResults.WithLabelValues(operation, result).Inc()
}

func (WalletCollector) RecordLedgerEntry(entryType, source string, amount decimal.Decimal) {
	ledgerEntries.WithLabelValues(entryType, source).Inc()
	ledgerVolume.WithLabelValues(entryType, source).Add(amount.InexactFloat64())
}

func (WalletCollector) RecordError(operation, code string) {
	operationErrors.WithLabelValues(operation, code).Inc()
}

func (WalletCollector) RecordCacheHit(string) {
	cacheLookups.WithLabelValues("hit").Inc()
}

func (WalletCollector) RecordCacheMiss(string) {
	cacheLookups.WithLabelValues("miss").Inc()
}
