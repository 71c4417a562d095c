package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `gorm:"default:'user'" json:"role"`
	Status    string    `gorm:"default:'active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// BankAccount is a payout destination. Deletes are soft so withdrawals that
// already point at an account can still be paid out or refunded. A user holds
// a given bank code and number at most once among live rows.
type BankAccount struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        uint           `gorm:"not null;index;uniqueIndex:idx_bank_accounts_owner,where:deleted_at IS NULL" json:"user_id"`
	BankName      string         `json:"bank_name"`
	BankCode      string         `gorm:"not null;uniqueIndex:idx_bank_accounts_owner" json:"bank_code"`
	AccountName   string         `gorm:"not null" json:"account_name"`
	AccountNumber string         `gorm:"not null;uniqueIndex:idx_bank_accounts_owner" json:"account_number"`
	AccountType   string         `json:"account_type,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
