package account

import (
	"context"
	"strconv"
	"sync"
	"testing"

	apperrors "cashon/internal/errors"
	"cashon/internal/models"
	"cashon/internal/queue"
	"cashon/internal/repositories"
	"cashon/internal/services/wallet"
	"cashon/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []queue.Job
}

func (d *recordingDispatcher) Enqueue(_ context.Context, job queue.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs = append(d.jobs, job)
	return nil
}

func newTestService(t *testing.T, dispatcher queue.Dispatcher) (*Service, *repositories.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	wallets := wallet.NewService(store, nil, wallet.WalletConfig{}, nil)
	return NewService(store, wallets, dispatcher), store
}

func TestRegisterQueuesWalletCreation(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc, store := newTestService(t, dispatcher)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: " Tola@Example.com ", FirstName: "Tola", LastName: "Ade"})
	require.NoError(t, err)
	assert.Equal(t, "tola@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)

	wallets, err := store.Wallets.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, wallets, "wallets are created by the job, not by Register")

	require.Len(t, dispatcher.jobs, 1)
	assert.Equal(t, "wallet.create:"+strconv.FormatUint(uint64(user.ID), 10), dispatcher.jobs[0].Key)
	require.NoError(t, dispatcher.jobs[0].Run(ctx))
	require.NoError(t, dispatcher.jobs[0].Run(ctx))

	wallets, err = store.Wallets.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, wallets, 2)

	again, err := svc.Register(ctx, RegisterRequest{Email: "tola@example.com"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "Tola", again.FirstName)
	assert.Len(t, dispatcher.jobs, 2)
}

func TestRegisterInlineLeavesUserReadyForDeposits(t *testing.T) {
	svc, store := newTestService(t, queue.Inline{})
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "kemi@example.com"})
	require.NoError(t, err)

	pocket, err := store.Wallets.GetByUserAndType(ctx, user.ID, models.WalletTypePocket)
	require.NoError(t, err)
	assert.True(t, pocket.Balance.IsZero())
	_, err = store.Wallets.GetByUserAndType(ctx, user.ID, models.WalletTypeSavings)
	require.NoError(t, err)
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc, _ := newTestService(t, dispatcher)

	for _, email := range []string{"", "not-an-email"} {
		_, err := svc.Register(context.Background(), RegisterRequest{Email: email})
		assert.ErrorIs(t, err, apperrors.ErrValidation, email)
	}
	assert.Empty(t, dispatcher.jobs)
}

func TestOnboard(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	svc, store := newTestService(t, dispatcher)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Onboard(ctx, 404), apperrors.ErrNotFound)
	assert.Empty(t, dispatcher.jobs)

	user := testutil.SeedUser(t, store)
	require.NoError(t, svc.Onboard(ctx, user.ID))
	require.Len(t, dispatcher.jobs, 1)
	require.NoError(t, dispatcher.jobs[0].Run(ctx))

	wallets, err := store.Wallets.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, wallets, 2)
}

func validAccount(userID uint) AddBankAccountRequest {
	return AddBankAccountRequest{
		UserID:        userID,
		BankName:      "GTBank",
		BankCode:      "058",
		AccountName:   "Tola Ade",
		AccountNumber: "0123456789",
	}
}

func TestAddBankAccountValidation(t *testing.T) {
	svc, store := newTestService(t, nil)
	user := testutil.SeedUser(t, store)

	tests := []struct {
		name   string
		mutate func(r *AddBankAccountRequest)
	}{
		{"missing bank code", func(r *AddBankAccountRequest) { r.BankCode = " " }},
		{"missing account name", func(r *AddBankAccountRequest) { r.AccountName = "" }},
		{"short number", func(r *AddBankAccountRequest) { r.AccountNumber = "123456789" }},
		{"long number", func(r *AddBankAccountRequest) { r.AccountNumber = "1234567890123" }},
		{"non digits", func(r *AddBankAccountRequest) { r.AccountNumber = "01234abc89" }},
		{"no user", func(r *AddBankAccountRequest) { r.UserID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validAccount(user.ID)
			tt.mutate(&req)
			_, err := svc.AddBankAccount(context.Background(), req)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestBankAccountLifecycle(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	user := testutil.SeedUser(t, store)
	other := testutil.SeedUser(t, store)

	account, err := svc.AddBankAccount(ctx, validAccount(user.ID))
	require.NoError(t, err)
	assert.NotZero(t, account.ID)

	_, err = svc.AddBankAccount(ctx, validAccount(user.ID))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// The same account may belong to another user.
	_, err = svc.AddBankAccount(ctx, validAccount(other.ID))
	require.NoError(t, err)

	list, err := svc.ListBankAccounts(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "0123456789", list[0].AccountNumber)

	assert.ErrorIs(t, svc.DeleteBankAccount(ctx, other.ID, account.ID), apperrors.ErrNotFound)
	require.NoError(t, svc.DeleteBankAccount(ctx, user.ID, account.ID))
	assert.ErrorIs(t, svc.DeleteBankAccount(ctx, user.ID, account.ID), apperrors.ErrNotFound)

	list, err = svc.ListBankAccounts(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.BankAccounts.GetForUser(ctx, account.ID, user.ID)
	assert.ErrorIs(t, err, repositories.ErrBankAccountNotFound)
	kept, err := store.BankAccounts.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tola Ade", kept.AccountName)

	readded, err := svc.AddBankAccount(ctx, validAccount(user.ID))
	require.NoError(t, err)
	assert.NotEqual(t, account.ID, readded.ID)
}
