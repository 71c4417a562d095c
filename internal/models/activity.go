package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RelatedKind discriminates what an activity's RelatedID points at.
type RelatedKind string

const (
	RelatedNone              RelatedKind = ""
	RelatedSaving            RelatedKind = "saving"
	RelatedSavingInterest    RelatedKind = "saving_interest"
	RelatedWithdrawal        RelatedKind = "withdrawal"
	RelatedDeposit           RelatedKind = "deposit"
	RelatedWalletTransaction RelatedKind = "wallet_transaction"
)

type RelatedRef struct {
	Kind RelatedKind `json:"kind"`
	ID   uint        `json:"id"`
}

type Activity struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Type          string          `gorm:"type:varchar(10);not null" json:"type"`
	Category      string          `gorm:"type:varchar(40);not null;index" json:"category"`
	SubCategory   string          `gorm:"type:varchar(40)" json:"sub_category"`
	Amount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(3);not null" json:"currency"`
	BalanceBefore decimal.Decimal `gorm:"type:numeric(20,2)" json:"balance_before"`
	BalanceAfter  decimal.Decimal `gorm:"type:numeric(20,2)" json:"balance_after"`
	Status        string          `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Metadata      JSON            `gorm:"type:jsonb" json:"metadata"`
	RelatedType   RelatedKind     `gorm:"type:varchar(30)" json:"related_type"`
	RelatedID     uint            `json:"related_id"`
	BatchID       string          `gorm:"type:varchar(40);index" json:"batch_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (a *Activity) Related() RelatedRef {
	return RelatedRef{Kind: a.RelatedType, ID: a.RelatedID}
}

func (a *Activity) SetRelated(ref RelatedRef) {
	a.RelatedType = ref.Kind
	a.RelatedID = ref.ID
}

// Notification is an inbox record; delivery happens elsewhere.
type Notification struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Title       string          `gorm:"not null" json:"title"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2)" json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"desc"`
	ReadAt      *time.Time      `json:"read_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AdminAudit records an operator action with the state before and after.
type AdminAudit struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	AdminID    uint      `gorm:"not null;index" json:"admin_id"`
	Action     string    `gorm:"type:varchar(60);not null" json:"action"`
	EntityType string    `gorm:"type:varchar(40);not null" json:"entity_type"`
	EntityID   uint      `gorm:"not null" json:"entity_id"`
	Before     JSON      `gorm:"type:jsonb" json:"before"`
	After      JSON      `gorm:"type:jsonb" json:"after"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}
