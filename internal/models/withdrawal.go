package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending    WithdrawalStatus = "pending"
	WithdrawalProcessing WithdrawalStatus = "processing"
	WithdrawalCompleted  WithdrawalStatus = "completed"
	WithdrawalFailed     WithdrawalStatus = "failed"
	WithdrawalRefunded   WithdrawalStatus = "refunded"
)

type Withdrawal struct {
	ID            uint             `gorm:"primarykey" json:"id"`
	UserID        uint             `gorm:"not null;index" json:"user_id"`
	WalletID      uint             `gorm:"not null;index" json:"wallet_id"`
	BankAccountID uint             `gorm:"not null" json:"bank_account_id"`
	BankAccount   *BankAccount     `gorm:"foreignKey:BankAccountID" json:"bank_account,omitempty"`
	Amount        decimal.Decimal  `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency      string           `gorm:"type:varchar(3);not null" json:"currency"`
	Reference     string           `gorm:"type:varchar(120);not null;uniqueIndex" json:"reference"`
	Status        WithdrawalStatus `gorm:"type:varchar(20);not null;index;default:'pending'" json:"status"`
	Debited       bool             `gorm:"not null;default:false" json:"debited"`
	Refunded      bool             `gorm:"not null;default:false" json:"refunded"`
	Meta          JSON             `gorm:"type:jsonb" json:"meta"`
	// AmbiguousAt is set when the provider outcome was unknown. Only such
	// withdrawals may be reconciled by hand.
	AmbiguousAt *time.Time `gorm:"index" json:"ambiguous_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// RefundReference is the ledger key of the compensating credit.
func (w *Withdrawal) RefundReference() string {
	return "refund_" + w.Reference
}

// AwaitingReconciliation reports whether the withdrawal is debited, still in
// processing and parked after an ambiguous payout.
func (w *Withdrawal) AwaitingReconciliation() bool {
	return w.Status == WithdrawalProcessing && w.Debited && w.AmbiguousAt != nil
}

func (w *Withdrawal) IsTerminal() bool {
	switch w.Status {
	case WithdrawalCompleted, WithdrawalFailed, WithdrawalRefunded:
		return true
	}
	return false
}
