package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories bound to one *gorm.DB. Inside
// ExecuteInTransaction every repository shares the same transaction.
type Store struct {
	db *gorm.DB

	Wallets       WalletRepository
	Withdrawals   WithdrawalRepository
	Deposits      DepositRepository
	Users         UserRepository
	BankAccounts  BankAccountRepository
	Savings       SavingRepository
	Activities    ActivityRepository
	Notifications NotificationRepository
	Audits        AuditRepository
}

func NewStore(db *gorm.DB) *Store {
	if db == nil {
		panic("db is required")
	}
	return &Store{
		db:            db,
		Wallets:       NewWalletRepository(db),
		Withdrawals:   NewWithdrawalRepository(db),
		Deposits:      NewDepositRepository(db),
		Users:         NewUserRepository(db),
		BankAccounts:  NewBankAccountRepository(db),
		Savings:       NewSavingRepository(db),
		Activities:    NewActivityRepository(db),
		Notifications: NewNotificationRepository(db),
		Audits:        NewAuditRepository(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// ExecuteInTransaction runs fn inside a database transaction. Returning an
// error rolls back every write made through tx. Nested calls use savepoints.
func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
