package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SavingStatus string

const (
	SavingActive  SavingStatus = "active"
	SavingMatured SavingStatus = "matured"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

type Saving struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	Name         string          `gorm:"not null" json:"name"`
	Amount       decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Frequency    Frequency       `gorm:"type:varchar(20);not null" json:"frequency"`
	Duration     int             `gorm:"not null" json:"duration"`
	Status       SavingStatus    `gorm:"type:varchar(20);not null;index;default:'active'" json:"status"`
	StartsAt     time.Time       `json:"starts_at"`
	EndsAt       time.Time       `gorm:"index" json:"ends_at"`
	AutoRollover bool            `gorm:"not null;default:false" json:"auto_rollover"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SavingInterest rows are never updated; totals are summed on read.
// AccrualPeriod is unique per saving so a repeated sweep is a no-op.
type SavingInterest struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	SavingID      uint            `gorm:"not null;uniqueIndex:idx_saving_interest_period" json:"saving_id"`
	AccrualPeriod string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_saving_interest_period" json:"accrual_period"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	AccruedAt     time.Time       `json:"accrued_at"`
	CreatedAt     time.Time       `json:"created_at"`
}
