package notification

import (
	"context"
	"errors"
	"testing"

	"cashon/internal/models"
	"cashon/internal/repositories"
	"cashon/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndList(t *testing.T) {
	store := testutil.NewStore(t)
	user := testutil.SeedUser(t, store)
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, WithdrawalSucceeded(user.ID, decimal.NewFromInt(300), "Ada Obi")))
	require.NoError(t, svc.Send(ctx, DepositReceived(user.ID, decimal.NewFromInt(50), "Bola Ade")))

	items, err := svc.List(ctx, user.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	titles := []string{items[0].Title, items[1].Title}
	assert.ElementsMatch(t, []string{"Withdrawal Successful", "Transfer Received"}, titles)
	for _, n := range items {
		assert.False(t, n.Date.IsZero())
		assert.Nil(t, n.ReadAt)
	}
}

func TestSendTxRollsBack(t *testing.T) {
	store := testutil.NewStore(t)
	user := testutil.SeedUser(t, store)
	svc := NewService(store)
	ctx := context.Background()

	err := store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		if err := svc.SendTx(ctx, tx, WithdrawalRefunded(user.ID, decimal.NewFromInt(300), "Ada Obi")); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	items, err := svc.List(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMarkRead(t *testing.T) {
	store := testutil.NewStore(t)
	user := testutil.SeedUser(t, store)
	svc := NewService(store)
	ctx := context.Background()

	n := InterestAccrued(user.ID, decimal.RequireFromString("83.33"), "Rent", models.FrequencyMonthly)
	require.NoError(t, svc.Send(ctx, n))
	require.NoError(t, svc.MarkRead(ctx, n.ID, user.ID))

	items, err := svc.List(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NotNil(t, items[0].ReadAt)

	assert.Error(t, svc.MarkRead(ctx, n.ID, user.ID+1))
}

func TestMessages(t *testing.T) {
	amount := decimal.NewFromInt(10)

	assert.Equal(t, "Refunded, To Ada Obi", WithdrawalRefunded(1, amount, "Ada Obi").Description)
	assert.Equal(t, "Withdrawal Failed", WithdrawalRefunded(1, amount, "Ada Obi").Title)
	assert.Equal(t, "Withdraw, To Ada Obi", WithdrawalSucceeded(1, amount, "Ada Obi").Description)
	assert.Equal(t, "Add Money, From Bola", DepositReceived(1, amount, "Bola").Description)
	assert.Equal(t, "Rent | Interest", InterestAccrued(1, amount, "Rent", models.FrequencyDaily).Title)
}
