package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DepositSuccessful = "successful"

// Deposit is created at most once per provider reference.
type Deposit struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	WalletID  uint            `gorm:"not null;index" json:"wallet_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency  string          `gorm:"type:varchar(3);not null" json:"currency"`
	Reference string          `gorm:"type:varchar(120);not null;uniqueIndex" json:"reference"`
	Status    string          `gorm:"type:varchar(20);not null" json:"status"`
	Meta      JSON            `gorm:"type:jsonb" json:"meta"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
