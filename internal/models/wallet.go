package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletType string

const (
	WalletTypeSavings WalletType = "savings"
	WalletTypePocket  WalletType = "pocket"
)

const DefaultCurrency = "NGN"

// Wallet holds a user's balance for one wallet type. Balance only changes
// through the wallet service's ledger mutator.
type Wallet struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	UserID           uint            `gorm:"not null;uniqueIndex:idx_wallets_user_type" json:"user_id"`
	Type             WalletType      `gorm:"type:varchar(20);not null;uniqueIndex:idx_wallets_user_type" json:"type"`
	Balance          decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	AvailableBalance decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"available_balance"`
	Currency         string          `gorm:"type:varchar(3);not null;default:'NGN'" json:"currency"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (t WalletType) Valid() bool {
	return t == WalletTypeSavings || t == WalletTypePocket
}
