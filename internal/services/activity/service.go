// Package activity records the user-facing activity feed and resolves the
// entity each activity refers to.
package activity

import (
	"context"
	"errors"
	"fmt"

	apperrors "cashon/internal/errors"
	"cashon/internal/models"
	"cashon/internal/repositories"
)

// Activity types and categories shown in the feed.
const (
	TypeCredit = "credit"
	TypeDebit  = "debit"

	CategoryDeposit         = "deposit"
	CategoryWithdrawal      = "withdrawal"
	CategorySavingsLock     = "savings_lock"
	CategorySavingsInterest = "savings_interest"
	CategorySavingsMatured  = "savings_matured"
	CategoryAdminFunding    = "admin_funding"

	StatusCompleted = "completed"
)

var ErrUnknownRelatedKind = errors.New("unknown related kind")

type resolver func(ctx context.Context, store *repositories.Store, id uint) (interface{}, error)

// resolvers is keyed by the kind stored in Activity.RelatedType.
var resolvers = map[models.RelatedKind]resolver{
	models.RelatedSaving: func(ctx context.Context, s *repositories.Store, id uint) (interface{}, error) {
		return s.Savings.GetByID(ctx, id)
	},
	models.RelatedSavingInterest: func(ctx context.Context, s *repositories.Store, id uint) (interface{}, error) {
		return s.Savings.GetInterestByID(ctx, id)
	},
	models.RelatedWithdrawal: func(ctx context.Context, s *repositories.Store, id uint) (interface{}, error) {
		return s.Withdrawals.GetByID(ctx, id)
	},
	models.RelatedDeposit: func(ctx context.Context, s *repositories.Store, id uint) (interface{}, error) {
		return s.Deposits.GetByID(ctx, id)
	},
	models.RelatedWalletTransaction: func(ctx context.Context, s *repositories.Store, id uint) (interface{}, error) {
		return s.Wallets.GetTransactionByID(ctx, id)
	},
}

type Service struct {
	store *repositories.Store
}

func NewService(store *repositories.Store) *Service {
	if store == nil {
		panic("store is required")
	}
	return &Service{store: store}
}

// RecordTx writes a through tx.
func (s *Service) RecordTx(ctx context.Context, tx *repositories.Store, a *models.Activity) error {
	if a.Status == "" {
		a.Status = StatusCompleted
	}
	if a.Currency == "" {
		a.Currency = models.DefaultCurrency
	}
	if a.RelatedType != models.RelatedNone {
		if _, ok := resolvers[a.RelatedType]; !ok {
			return apperrors.ErrValidation.WithError(fmt.Errorf("%w: %s", ErrUnknownRelatedKind, a.RelatedType))
		}
	}
	if err := tx.Activities.Create(ctx, a); err != nil {
		return apperrors.ErrStorage.WithError(err)
	}
	return nil
}

func (s *Service) Record(ctx context.Context, a *models.Activity) error {
	return s.RecordTx(ctx, s.store, a)
}

func (s *Service) List(ctx context.Context, userID uint, limit, offset int) ([]models.Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.store.Activities.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	return items, nil
}

// Resolve loads the record ref points at. The concrete type depends on the
// kind: *models.Saving, *models.Withdrawal and so on.
func (s *Service) Resolve(ctx context.Context, ref models.RelatedRef) (interface{}, error) {
	fn, ok := resolvers[ref.Kind]
	if !ok {
		return nil, apperrors.ErrValidation.WithError(fmt.Errorf("%w: %q", ErrUnknownRelatedKind, ref.Kind))
	}
	v, err := fn(ctx, s.store, ref.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrNotFound.WithMessage(fmt.Sprintf("%s %d not found", ref.Kind, ref.ID))
		}
		return nil, apperrors.ErrStorage.WithError(err)
	}
	return v, nil
}

func isNotFound(err error) bool {
	for _, target := range []error{
		repositories.ErrSavingNotFound,
		repositories.ErrWithdrawalNotFound,
		repositories.ErrDepositNotFound,
		repositories.ErrTransactionNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
