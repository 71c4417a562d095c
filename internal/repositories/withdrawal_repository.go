package repositories

import (
	"context"
	"time"

	"cashon/internal/models"
)

// Settlement selects which processing withdrawals a terminal update may touch.
// The two sets are disjoint, so a payout answered by the provider and a
// manual reconciliation can never both resolve the same withdrawal.
type Settlement int

const (
	// SettleInFlight resolves a payout the provider answered directly.
	SettleInFlight Settlement = iota
	// SettleParked resolves a payout MarkAmbiguous recorded as unknown.
	SettleParked
)

// WithdrawalRepository defines persistence for the withdrawal state machine.
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *models.Withdrawal) error
	GetByID(ctx context.Context, id uint) (*models.Withdrawal, error)
	GetByReference(ctx context.Context, reference string) (*models.Withdrawal, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Withdrawal, error)
	ListByStatusBefore(ctx context.Context, status models.WithdrawalStatus, before time.Time) ([]models.Withdrawal, error)

	// LockByID reads the row FOR UPDATE, only meaningful inside a transaction.
	LockByID(ctx context.Context, id uint) (*models.Withdrawal, error)
	// Update persists status, flags and meta.
	Update(ctx context.Context, withdrawal *models.Withdrawal) error
	// MarkAmbiguous stamps ambiguous_at on a debited processing withdrawal
	// that has not been parked yet.
	MarkAmbiguous(ctx context.Context, id uint, at time.Time, meta models.JSON) (bool, error)
	// MarkCompleted moves a debited processing withdrawal to completed. It
	// reports whether this caller won the transition.
	MarkCompleted(ctx context.Context, id uint, settle Settlement, meta models.JSON) (bool, error)
	// MarkRefunded moves a debited processing withdrawal to refunded, once.
	MarkRefunded(ctx context.Context, id uint, settle Settlement, meta models.JSON) (bool, error)
}
