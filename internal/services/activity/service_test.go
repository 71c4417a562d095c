package activity

import (
	"context"
	"testing"
	"time"

	apperrors "cashon/internal/errors"
	"cashon/internal/models"
	"cashon/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndResolve(t *testing.T) {
	store := testutil.NewStore(t)
	user := testutil.SeedUser(t, store)
	svc := NewService(store)
	ctx := context.Background()

	saving := &models.Saving{
		UserID:    user.ID,
		Name:      "Rent",
		Amount:    decimal.NewFromInt(10000),
		Frequency: models.FrequencyMonthly,
		Duration:  90,
		Status:    models.SavingActive,
		StartsAt:  time.Now().UTC(),
		EndsAt:    time.Now().UTC().AddDate(0, 0, 90),
	}
	require.NoError(t, store.Savings.Create(ctx, saving))

	a := &models.Activity{
		UserID:   user.ID,
		Type:     TypeDebit,
		Category: CategorySavingsLock,
		Amount:   saving.Amount,
		Title:    "Savings Plan Created",
	}
	a.SetRelated(models.RelatedRef{Kind: models.RelatedSaving, ID: saving.ID})
	require.NoError(t, svc.Record(ctx, a))
	assert.Equal(t, StatusCompleted, a.Status)

	items, err := svc.List(ctx, user.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	v, err := svc.Resolve(ctx, items[0].Related())
	require.NoError(t, err)
	got, ok := v.(*models.Saving)
	require.True(t, ok)
	assert.Equal(t, "Rent", got.Name)
}

func TestResolveErrors(t *testing.T) {
	store := testutil.NewStore(t)
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Resolve(ctx, models.RelatedRef{Kind: "invoice", ID: 1})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.ErrorIs(t, err, ErrUnknownRelatedKind)

	_, err = svc.Resolve(ctx, models.RelatedRef{Kind: models.RelatedWithdrawal, ID: 404})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecordRejectsUnknownKind(t *testing.T) {
	store := testutil.NewStore(t)
	user := testutil.SeedUser(t, store)
	svc := NewService(store)

	a := &models.Activity{UserID: user.ID, Type: TypeCredit, Category: CategoryDeposit, Amount: decimal.NewFromInt(1)}
	a.SetRelated(models.RelatedRef{Kind: "invoice", ID: 3})

	err := svc.Record(context.Background(), a)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
