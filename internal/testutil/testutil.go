// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"cashon/internal/models"
	"cashon/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var seq atomic.Int64

// NewDB opens a migrated SQLite database in the test's temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repositories.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repositories.Close(db) })
	return db
}

// NewStore is NewDB wrapped in a repositories.Store.
func NewStore(t *testing.T) *repositories.Store {
	t.Helper()
	return repositories.NewStore(NewDB(t))
}

// Money parses a decimal literal, failing the test on bad input.
func Money(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// SeedUser creates a user with a unique email.
func SeedUser(t *testing.T, store *repositories.Store) *models.User {
	t.Helper()
	n := seq.Add(1)
	user := &models.User{
		Email:     fmt.Sprintf("user%d@example.com", n),
		FirstName: "Ada",
		LastName:  fmt.Sprintf("Obi%d", n),
	}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

// SeedWallet creates a wallet holding balance. The balance is written directly,
// bypassing the ledger, so only use it for fixtures.
func SeedWallet(t *testing.T, store *repositories.Store, userID uint, walletType models.WalletType, balance string) *models.Wallet {
	t.Helper()
	ctx := context.Background()
	wallet, err := store.Wallets.FirstOrCreate(ctx, userID, walletType, models.DefaultCurrency)
	require.NoError(t, err)
	wallet.Balance = Money(t, balance)
	wallet.AvailableBalance = wallet.Balance
	require.NoError(t, store.Wallets.UpdateBalance(ctx, wallet))
	return wallet
}

// SeedBankAccount creates a payout destination for userID.
func SeedBankAccount(t *testing.T, store *repositories.Store, userID uint) *models.BankAccount {
	t.Helper()
	account := &models.BankAccount{
		UserID:        userID,
		BankName:      "Test Bank",
		BankCode:      "058",
		AccountName:   "Ada Obi",
		AccountNumber: fmt.Sprintf("01%08d", seq.Add(1)),
	}
	require.NoError(t, store.BankAccounts.Create(context.Background(), account))
	return account
}
