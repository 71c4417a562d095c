package repositories

import (
	"context"

	"cashon/internal/models"
)

// UserRepository resolves account holders, e.g. from webhook customer emails.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// BankAccountRepository stores payout destinations. GetByID also returns
// deleted accounts; the user scoped reads do not.
type BankAccountRepository interface {
	Create(ctx context.Context, account *models.BankAccount) error
	GetByID(ctx context.Context, id uint) (*models.BankAccount, error)
	GetForUser(ctx context.Context, id, userID uint) (*models.BankAccount, error)
	ListByUser(ctx context.Context, userID uint) ([]models.BankAccount, error)
	Delete(ctx context.Context, id, userID uint) error
}
