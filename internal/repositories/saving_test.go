package repositories_test

import (
	"context"
	"testing"
	"time"

	"cashon/internal/models"
	"cashon/internal/repositories"
	"cashon/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavingInterestUniquePerPeriod(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, store)
	now := time.Now().UTC()
	saving := &models.Saving{
		UserID: user.ID, Name: "Rent", Amount: testutil.Money(t, "10000"),
		Frequency: models.FrequencyMonthly, Duration: 90, Status: models.SavingActive,
		StartsAt: now, EndsAt: now.AddDate(0, 0, 90),
	}
	require.NoError(t, store.Savings.Create(ctx, saving))

	interest := func(period, amount string) *models.SavingInterest {
		return &models.SavingInterest{SavingID: saving.ID, AccrualPeriod: period, Amount: testutil.Money(t, amount), AccruedAt: now}
	}

	require.NoError(t, store.Savings.CreateInterest(ctx, interest("2026-09", "83.33")))
	require.NoError(t, store.Savings.CreateInterest(ctx, interest("2026-10", "83.33")))
	err := store.Savings.CreateInterest(ctx, interest("2026-10", "83.33"))
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	total, err := store.Savings.SumInterest(ctx, saving.ID)
	require.NoError(t, err)
	assert.Equal(t, "166.66", total.String())

	byUser, err := store.Savings.SumInterestByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(byUser))

	principal, err := store.Savings.SumPrincipalByUser(ctx, user.ID, models.SavingActive)
	require.NoError(t, err)
	assert.Equal(t, "10000", principal.String())
}

func TestMarkMaturedOnlyOnce(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	user := testutil.SeedUser(t, store)
	now := time.Now().UTC()
	saving := &models.Saving{
		UserID: user.ID, Name: "Trip", Amount: testutil.Money(t, "500"),
		Frequency: models.FrequencyDaily, Duration: 1, Status: models.SavingActive,
		StartsAt: now.AddDate(0, 0, -2), EndsAt: now.AddDate(0, 0, -1),
	}
	require.NoError(t, store.Savings.Create(ctx, saving))

	changed, err := store.Savings.MarkMatured(ctx, saving.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = store.Savings.MarkMatured(ctx, saving.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	active, err := store.Savings.ListActiveAfter(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, active)
}
