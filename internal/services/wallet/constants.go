package wallet

// Default configuration values
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	verifyBatchSize = 500
)

// Operation names used for metrics labels.
const (
	opApplyEntry = "apply_ledger_entry"
	opFund       = "fund_wallet"
	opCreate     = "create_wallets"
	opGet        = "get_wallet"
)
