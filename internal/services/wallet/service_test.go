package wallet

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	apperrors "cashon/internal/errors"
	"cashon/internal/models"
	"cashon/internal/repositories"
	"cashon/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetWallet(ctx context.Context, walletID uint) (*models.Wallet, error) {
	args := m.Called(ctx, walletID)
	w, _ := args.Get(0).(*models.Wallet)
	return w, args.Error(1)
}

func (m *MockCache) WalletVersion(ctx context.Context, walletID uint) (int64, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) CacheWallet(ctx context.Context, wallet *models.Wallet, version int64) (bool, error) {
	args := m.Called(ctx, wallet, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) GetUserWallets(ctx context.Context, userID uint) ([]models.Wallet, error) {
	args := m.Called(ctx, userID)
	w, _ := args.Get(0).([]models.Wallet)
	return w, args.Error(1)
}

func (m *MockCache) UserWalletsVersion(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) CacheUserWallets(ctx context.Context, userID uint, wallets []models.Wallet, version int64) (bool, error) {
	args := m.Called(ctx, userID, wallets, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) InvalidateWallet(ctx context.Context, wallet *models.Wallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func newTestService(t *testing.T) (Service, *repositories.Store, *models.Wallet) {
	t.Helper()
	store := testutil.NewStore(t)
	user := testutil.SeedUser(t, store)
	svc := NewService(store, nil, WalletConfig{}, nil)

	wallets, err := svc.CreateWallets(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	return svc, store, &wallets[1]
}

func credit(walletID uint, amount decimal.Decimal, ref string) LedgerEntryRequest {
	return LedgerEntryRequest{
		WalletID:  walletID,
		Type:      models.EntryCredit,
		Amount:    amount,
		Source:    models.SourceDeposit,
		Reference: ref,
	}
}

func TestApplyLedgerEntry(t *testing.T) {
	svc, _, pocket := newTestService(t)
	ctx := context.Background()

	res, err := svc.ApplyLedgerEntry(ctx, credit(pocket.ID, testutil.Money(t, "1000"), "dep-1"))
	require.NoError(t, err)
	assert.Equal(t, "0.00", res.PreviousBalance.StringFixed(2))
	assert.Equal(t, "1000.00", res.NewBalance.StringFixed(2))
	assert.Equal(t, models.DefaultCurrency, res.Entry.Currency)

	res, err = svc.ApplyLedgerEntry(ctx, LedgerEntryRequest{
		WalletID:  pocket.ID,
		Type:      models.EntryDebit,
		Amount:    testutil.Money(t, "250.255"),
		Source:    models.SourceWithdrawal,
		Reference: "wd-1",
		Note:      "Transfer to Ada Obi",
	})
	require.NoError(t, err)
	assert.Equal(t, "250.26", res.Entry.Amount.StringFixed(2))
	assert.Equal(t, "1000.00", res.Entry.PreviousBalance.StringFixed(2))
	assert.Equal(t, "749.74", res.Entry.NewBalance.StringFixed(2))

	balance, err := svc.GetBalance(ctx, pocket.ID)
	require.NoError(t, err)
	assert.Equal(t, "749.74", balance.StringFixed(2))

	history, err := svc.GetTransactionHistory(ctx, pocket.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "wd-1", history[0].Reference)
	assert.True(t, history[0].PreviousBalance.Equal(history[1].NewBalance))
}

func TestApplyLedgerEntryRejectsOverdraft(t *testing.T) {
	svc, _, pocket := newTestService(t)
	ctx := context.Background()

	_, err := svc.ApplyLedgerEntry(ctx, credit(pocket.ID, testutil.Money(t, "50"), "dep-1"))
	require.NoError(t, err)

	_, err = svc.ApplyLedgerEntry(ctx, LedgerEntryRequest{
		WalletID:  pocket.ID,
		Type:      models.EntryDebit,
		Amount:    testutil.Money(t, "50.01"),
		Source:    models.SourceWithdrawal,
		Reference: "wd-1",
	})
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	balance, err := svc.GetBalance(ctx, pocket.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", balance.StringFixed(2))

	history, err := svc.GetTransactionHistory(ctx, pocket.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestApplyLedgerEntryValidation(t *testing.T) {
	svc, _, pocket := newTestService(t)

	tests := []struct {
		name    string
		req     LedgerEntryRequest
		wantErr error
	}{
		{"zero amount", credit(pocket.ID, decimal.Zero, "r1"), apperrors.ErrInvalidAmount},
		{"negative amount", credit(pocket.ID, decimal.NewFromInt(-5), "r2"), apperrors.ErrInvalidAmount},
		{"rounds to zero", credit(pocket.ID, testutil.Money(t, "0.004"), "r3"), apperrors.ErrInvalidAmount},
		{"missing reference", credit(pocket.ID, decimal.NewFromInt(5), " "), apperrors.ErrValidation},
		{"unknown wallet", credit(pocket.ID+100, decimal.NewFromInt(5), "r4"), apperrors.ErrWalletNotFound},
		{"bad type", LedgerEntryRequest{WalletID: pocket.ID, Type: "transfer", Amount: decimal.NewFromInt(5), Reference: "r5"}, apperrors.ErrInvalidEntryType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyLedgerEntry(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestApplyLedgerEntryDuplicateReference(t *testing.T) {
	svc, _, pocket := newTestService(t)
	ctx := context.Background()

	_, err := svc.ApplyLedgerEntry(ctx, credit(pocket.ID, decimal.NewFromInt(100), "dep-1"))
	require.NoError(t, err)

	_, err = svc.ApplyLedgerEntry(ctx, credit(pocket.ID, decimal.NewFromInt(100), "dep-1"))
	assert.ErrorIs(t, err, apperrors.ErrDuplicateReference)

	balance, err := svc.GetBalance(ctx, pocket.ID)
	require.NoError(t, err)
	assert.Equal(t, "100.00", balance.StringFixed(2))
}

func TestConcurrentEntriesMatchLedger(t *testing.T) {
	svc, _, pocket := newTestService(t)
	ctx := context.Background()

	seed := decimal.NewFromInt(500)
	_, err := svc.ApplyLedgerEntry(ctx, credit(pocket.ID, seed, "seed"))
	require.NoError(t, err)

	const workers = 8
	const perWorker = 15

	// expected sums only the calls that reported success.
	var mu sync.Mutex
	expected := seed
	applied := 1

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(w)))
			for i := 0; i < perWorker; i++ {
				entryType := models.EntryCredit
				if rng.Intn(2) == 0 {
					entryType = models.EntryDebit
				}
				amount := decimal.New(int64(rng.Intn(10000)+1), -2)
				_, err := svc.ApplyLedgerEntry(ctx, LedgerEntryRequest{
					WalletID:  pocket.ID,
					Type:      entryType,
					Amount:    amount,
					Source:    models.SourceAdminFunding,
					Reference: fmt.Sprintf("w%d-%d", w, i),
				})
				if err != nil {
					if !apperrors.Is(err, apperrors.ErrInsufficientFunds) {
						t.Errorf("unexpected error: %v", err)
					}
					continue
				}
				mu.Lock()
				if entryType == models.EntryDebit {
					expected = expected.Sub(amount)
				} else {
					expected = expected.Add(amount)
				}
				applied++
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	report, err := svc.VerifyLedger(ctx, pocket.ID)
	require.NoError(t, err)
	assert.True(t, report.ChainIntact, "chain broken at %+v", report.Break)
	assert.True(t, report.Consistent, "balance %s ledger %s", report.Balance, report.LedgerNet)
	assert.Equal(t, int64(applied), report.EntryCount)
	assert.Equal(t, expected.StringFixed(2), report.Balance.StringFixed(2))
	assert.False(t, report.Balance.IsNegative())
}

func TestVerifyLedgerReportsFirstChainBreak(t *testing.T) {
	svc, store, pocket := newTestService(t)
	ctx := context.Background()

	for i, amount := range []int64{100, 50, 25} {
		_, err := svc.ApplyLedgerEntry(ctx, credit(pocket.ID, decimal.NewFromInt(amount), fmt.Sprintf("dep-%d", i)))
		require.NoError(t, err)
	}
	report, err := svc.VerifyLedger(ctx, pocket.ID)
	require.NoError(t, err)
	require.True(t, report.Consistent)

	// Totals only read amount, so this edit leaves them matching.
	second, err := store.Wallets.GetTransactionByReference(ctx, "dep-1")
	require.NoError(t, err)
	require.NoError(t, store.DB().Model(&models.WalletTransaction{}).
		Where("id = ?", second.ID).
		Update("previous_balance", decimal.NewFromInt(90)).Error)

	report, err = svc.VerifyLedger(ctx, pocket.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Balance.String(), report.LedgerNet.String())
	assert.False(t, report.ChainIntact)
	assert.False(t, report.Consistent)
	require.NotNil(t, report.Break)
	assert.Equal(t, second.ID, report.Break.EntryID)
	assert.Equal(t, "dep-1", report.Break.Reference)
	assert.Equal(t, "previous_balance", report.Break.Field)
	assert.Equal(t, "100.00", report.Break.Expected.StringFixed(2))
	assert.Equal(t, "90.00", report.Break.Actual.StringFixed(2))
}

func TestVerifyLedgerFlagsBalanceOffChainEnd(t *testing.T) {
	svc, store, pocket := newTestService(t)
	ctx := context.Background()

	_, err := svc.ApplyLedgerEntry(ctx, credit(pocket.ID, decimal.NewFromInt(100), "dep-1"))
	require.NoError(t, err)
	require.NoError(t, store.DB().Model(&models.Wallet{}).
		Where("id = ?", pocket.ID).
		Update("balance", decimal.NewFromInt(120)).Error)

	report, err := svc.VerifyLedger(ctx, pocket.ID)
	require.NoError(t, err)
	assert.False(t, report.Consistent)
	require.NotNil(t, report.Break)
	assert.Equal(t, "balance", report.Break.Field)
	assert.Equal(t, "100.00", report.Break.Expected.StringFixed(2))
}

func TestTxEntryRollsBackWithCaller(t *testing.T) {
	svc, store, pocket := newTestService(t)
	ctx := context.Background()

	err := store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		if _, err := svc.ApplyLedgerEntryTx(ctx, tx, credit(pocket.ID, decimal.NewFromInt(70), "dep-1")); err != nil {
			return err
		}
		return fmt.Errorf("caller failed")
	})
	require.Error(t, err)

	balance, err := svc.GetBalance(ctx, pocket.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	_, err = store.Wallets.GetTransactionByReference(ctx, "dep-1")
	assert.ErrorIs(t, err, repositories.ErrTransactionNotFound)
}

func TestCreateWalletsIsIdempotent(t *testing.T) {
	svc, _, pocket := newTestService(t)

	wallets, err := svc.CreateWallets(context.Background(), pocket.UserID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, models.WalletTypeSavings, wallets[0].Type)
	assert.Equal(t, pocket.ID, wallets[1].ID)
}

func TestFundWalletWritesAudit(t *testing.T) {
	svc, store, pocket := newTestService(t)
	ctx := context.Background()

	res, err := svc.FundWallet(ctx, FundRequest{
		AdminID: 9,
		UserID:  pocket.UserID,
		Amount:  decimal.NewFromInt(300),
		Reason:  "promo credit",
	})
	require.NoError(t, err)
	assert.Equal(t, models.SourceAdminFunding, res.Entry.Source)

	audits, err := store.Audits.ListByEntity(ctx, "wallet", pocket.ID)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, "0.00", audits[0].Before["balance"])
	assert.Equal(t, "300.00", audits[0].After["balance"])
	assert.Equal(t, "promo credit", audits[0].Reason)

	_, err = svc.FundWallet(ctx, FundRequest{AdminID: 9, UserID: pocket.UserID, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCacheInvalidatedAfterCommit(t *testing.T) {
	store := testutil.NewStore(t)
	user := testutil.SeedUser(t, store)
	pocket := testutil.SeedWallet(t, store, user.ID, models.WalletTypePocket, "0")

	cache := new(MockCache)
	cache.On("InvalidateWallet", mock.Anything, mock.MatchedBy(func(w *models.Wallet) bool {
		return w.ID == pocket.ID
	})).Return(nil).Once()

	svc := NewService(store, cache, WalletConfig{}, nil)
	_, err := svc.ApplyLedgerEntry(context.Background(), credit(pocket.ID, decimal.NewFromInt(10), "dep-1"))
	require.NoError(t, err)

	_, err = svc.ApplyLedgerEntry(context.Background(), credit(pocket.ID, decimal.Zero, "dep-2"))
	require.Error(t, err)

	cache.AssertExpectations(t)
}

func TestGetWalletUsesCache(t *testing.T) {
	store := testutil.NewStore(t)
	cached := &models.Wallet{ID: 42, UserID: 1, Type: models.WalletTypePocket, Balance: decimal.NewFromInt(5)}

	cache := new(MockCache)
	cache.On("GetWallet", mock.Anything, uint(42)).Return(cached, nil)

	svc := NewService(store, cache, WalletConfig{}, nil)
	wallet, err := svc.GetWallet(context.Background(), 42)
	require.NoError(t, err)
	assert.Same(t, cached, wallet)

	cache.On("GetWallet", mock.Anything, uint(7)).Return(nil, nil)
	cache.On("WalletVersion", mock.Anything, uint(7)).Return(int64(0), nil)
	_, err = svc.GetWallet(context.Background(), 7)
	assert.ErrorIs(t, err, apperrors.ErrWalletNotFound)
	cache.AssertNotCalled(t, "CacheWallet", mock.Anything, mock.Anything, mock.Anything)
}

// versionedCache keeps wallets in memory with the same conditional write
// rules as the Redis cache. onVersion runs right after a version is handed
// out, standing in for a commit that lands during the database read.
type versionedCache struct {
	NoopCache
	mu        sync.Mutex
	wallets   map[uint]models.Wallet
	versions  map[uint]int64
	onVersion func()
}

func newVersionedCache() *versionedCache {
	return &versionedCache{wallets: map[uint]models.Wallet{}, versions: map[uint]int64{}}
}

func (c *versionedCache) GetWallet(_ context.Context, walletID uint) (*models.Wallet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.wallets[walletID]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (c *versionedCache) WalletVersion(_ context.Context, walletID uint) (int64, error) {
	c.mu.Lock()
	v := c.versions[walletID]
	hook := c.onVersion
	c.onVersion = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return v, nil
}

func (c *versionedCache) CacheWallet(_ context.Context, w *models.Wallet, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[w.ID] != version {
		return false, nil
	}
	c.wallets[w.ID] = *w
	return true, nil
}

func (c *versionedCache) InvalidateWallet(_ context.Context, w *models.Wallet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.wallets, w.ID)
	c.versions[w.ID]++
	return nil
}

func TestGetWalletSkipsCacheWhenInvalidatedDuringRead(t *testing.T) {
	store := testutil.NewStore(t)
	user := testutil.SeedUser(t, store)
	pocket := testutil.SeedWallet(t, store, user.ID, models.WalletTypePocket, "0")
	ctx := context.Background()

	cache := newVersionedCache()
	svc := NewService(store, cache, WalletConfig{}, nil)

	// A commit lands after the version was read: the row read afterwards may
	// predate it, so nothing may be cached.
	cache.onVersion = func() {
		_, err := svc.ApplyLedgerEntry(ctx, credit(pocket.ID, decimal.NewFromInt(40), "dep-1"))
		require.NoError(t, err)
	}
	_, err := svc.GetWallet(ctx, pocket.ID)
	require.NoError(t, err)
	cached, err := cache.GetWallet(ctx, pocket.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	// A quiet read is cached and reflects the committed balance.
	w, err := svc.GetWallet(ctx, pocket.ID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", w.Balance.StringFixed(2))
	cached, err = cache.GetWallet(ctx, pocket.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "40.00", cached.Balance.StringFixed(2))

	_, err = svc.ApplyLedgerEntry(ctx, credit(pocket.ID, decimal.NewFromInt(10), "dep-2"))
	require.NoError(t, err)
	cached, err = cache.GetWallet(ctx, pocket.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
