package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryCredit EntryType = "credit"
	EntryDebit  EntryType = "debit"
)

type EntrySource string

const (
	SourceDeposit      EntrySource = "deposit"
	SourceWithdrawal   EntrySource = "withdrawal"
	SourceRefund       EntrySource = "refund"
	SourceSavingsLock  EntrySource = "savings_lock"
	SourceAdminFunding EntrySource = "admin_funding"
)

// WalletTransaction is an append-only ledger entry. NewBalance equals
// PreviousBalance plus or minus Amount and matched the wallet at commit time.
type WalletTransaction struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	WalletID        uint            `gorm:"not null;index" json:"wallet_id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Type            EntryType       `gorm:"type:varchar(10);not null" json:"type"`
	Source          EntrySource     `gorm:"type:varchar(30);not null" json:"source"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	PreviousBalance decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"previous_balance"`
	NewBalance      decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"new_balance"`
	Reference       string          `gorm:"type:varchar(120);not null;uniqueIndex" json:"reference"`
	Note            string          `json:"note"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (t EntryType) Valid() bool {
	return t == EntryCredit || t == EntryDebit
}
