package wallet

import (
	"cashon/internal/models"

	"github.com/shopspring/decimal"
)

// WalletConfig holds configuration for wallet operations
type WalletConfig struct {
	DefaultCurrency string
}

// LedgerEntryRequest describes one balance change.
type LedgerEntryRequest struct {
	WalletID  uint
	Type      models.EntryType
	Amount    decimal.Decimal
	Source    models.EntrySource
	Reference string
	Note      string
}

// LedgerEntryResult is the committed (or, inside a caller's transaction,
// pending) outcome of a ledger entry.
type LedgerEntryResult struct {
	Wallet          *models.Wallet
	Entry           *models.WalletTransaction
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
}

// FundRequest is an operator credit to a user's wallet.
type FundRequest struct {
	AdminID    uint
	UserID     uint
	WalletType models.WalletType
	Amount     decimal.Decimal
	Reason     string
}

// LedgerReport compares a wallet balance against its entries. Consistent
// needs both the totals to match and the balance chain to be unbroken.
type LedgerReport struct {
	WalletID    uint            `json:"wallet_id"`
	Balance     decimal.Decimal `json:"balance"`
	LedgerNet   decimal.Decimal `json:"ledger_net"`
	EntryCount  int64           `json:"entry_count"`
	ChainIntact bool            `json:"chain_intact"`
	Break       *ChainBreak     `json:"break,omitempty"`
	Consistent  bool            `json:"consistent"`
}

// ChainBreak is the first entry whose balances do not follow from the one
// before it. Expected is what the chain says the field should hold.
type ChainBreak struct {
	EntryID   uint            `json:"entry_id"`
	Reference string          `json:"reference"`
	Field     string          `json:"field"`
	Expected  decimal.Decimal `json:"expected"`
	Actual    decimal.Decimal `json:"actual"`
}
