// Package account onboards users and manages their payout bank accounts.
//
// Registering a user only stores the user row. The savings and pocket wallets
// are created by a background wallet.create job, which is idempotent and can
// be queued again with Onboard.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	apperrors "cashon/internal/errors"
	"cashon/internal/logger"
	"cashon/internal/models"
	"cashon/internal/queue"
	"cashon/internal/repositories"
	"cashon/internal/services/wallet"
)

const jobCreateWallets = "wallet.create"

var (
	ErrUserNotFound           = apperrors.ErrNotFound.WithMessage("user not found")
	ErrBankAccountNotFound    = apperrors.ErrNotFound.WithMessage("bank account not found")
	ErrBankAccountExists      = apperrors.ErrConflict.WithMessage("bank account already exists")
	errAccountNumberMalformed = apperrors.ErrValidation.WithMessage("account_number must be 10 to 12 digits")
)

type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AddBankAccountRequest struct {
	UserID        uint   `json:"-"`
	BankName      string `json:"bank_name"`
	BankCode      string `json:"bank_code"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
}

type Service struct {
	store      *repositories.Store
	wallets    wallet.Service
	dispatcher queue.Dispatcher
}

func NewService(store *repositories.Store, wallets wallet.Service, dispatcher queue.Dispatcher) *Service {
	if store == nil {
		panic("store is required")
	}
	if wallets == nil {
		panic("wallet service is required")
	}
	if dispatcher == nil {
		dispatcher = queue.Inline{}
	}
	return &Service{store: store, wallets: wallets, dispatcher: dispatcher}
}

// Register returns the user with req.Email, creating it if needed, and
// queues wallet creation either way.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return nil, apperrors.ErrValidation.WithMessage("a valid email is required")
	}
	email := strings.ToLower(addr.Address)

	user, err := s.store.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		logger.Info().Uint("user_id", user.ID).Msg("user already registered")
	case errors.Is(err, repositories.ErrUserNotFound):
		user = &models.User{
			Email:     email,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Role:      models.RoleUser,
		}
		if err := s.store.Users.Create(ctx, user); err != nil {
			if !errors.Is(err, repositories.ErrDuplicate) {
				return nil, apperrors.ErrStorage.WithError(err)
			}
			// Lost a concurrent registration for the same email.
			if user, err = s.store.Users.GetByEmail(ctx, email); err != nil {
				return nil, apperrors.ErrStorage.WithError(err)
			}
		} else {
			logger.Info().Uint("user_id", user.ID).Str("email", email).Msg("user registered")
		}
	default:
		return nil, apperrors.ErrStorage.WithError(err)
	}

	s.enqueueWallets(ctx, user.ID)
	return user, nil
}

// Onboard queues wallet creation for an existing user. It is safe to call
// for a user whose wallets already exist.
func (s *Service) Onboard(ctx context.Context, userID uint) error {
	if _, err := s.store.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return apperrors.ErrStorage.WithError(err)
	}
	s.enqueueWallets(ctx, userID)
	return nil
}

func (s *Service) enqueueWallets(ctx context.Context, userID uint) {
	err := s.dispatcher.Enqueue(ctx, queue.Job{
		Name: jobCreateWallets,
		Key:  fmt.Sprintf("%s:%d", jobCreateWallets, userID),
		Run: func(ctx context.Context) error {
			wallets, err := s.wallets.CreateWallets(ctx, userID)
			if err != nil {
				return err
			}
			logger.Info().Uint("user_id", userID).Int("wallets", len(wallets)).Msg("wallets ready")
			return nil
		},
	})
	switch {
	case err == nil, errors.Is(err, queue.ErrDuplicateJob):
	case queue.IsJobError(err):
		logger.Error().Err(err).Uint("user_id", userID).Msg("wallet creation failed")
	default:
		logger.Warn().Err(err).Uint("user_id", userID).Msg("wallet creation not queued")
	}
}

func (r *AddBankAccountRequest) normalize() error {
	r.BankName = strings.TrimSpace(r.BankName)
	r.BankCode = strings.TrimSpace(r.BankCode)
	r.AccountName = strings.TrimSpace(r.AccountName)
	r.AccountNumber = strings.TrimSpace(r.AccountNumber)
	r.AccountType = strings.TrimSpace(r.AccountType)

	missing := map[string]string{}
	for field, v := range map[string]string{
		"bank_name":      r.BankName,
		"bank_code":      r.BankCode,
		"account_name":   r.AccountName,
		"account_number": r.AccountNumber,
	} {
		if v == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return apperrors.ErrValidation.WithMessage("missing bank account fields").WithDetails(missing)
	}
	if n := len(r.AccountNumber); n < 10 || n > 12 || strings.Trim(r.AccountNumber, "0123456789") != "" {
		return errAccountNumberMalformed
	}
	return nil
}

// AddBankAccount stores a payout destination for req.UserID. The same bank
// code and number can only be held once per user.
func (s *Service) AddBankAccount(ctx context.Context, req AddBankAccountRequest) (*models.BankAccount, error) {
	if req.UserID == 0 {
		return nil, apperrors.ErrValidation.WithMessage("user id is required")
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}

	account := &models.BankAccount{
		UserID:        req.UserID,
		BankName:      req.BankName,
		BankCode:      req.BankCode,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		AccountType:   req.AccountType,
	}
	if err := s.store.BankAccounts.Create(ctx, account); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrBankAccountExists
		}
		return nil, apperrors.ErrStorage.WithError(err)
	}

	logger.Info().
		Uint("user_id", req.UserID).
		Uint("bank_account_id", account.ID).
		Str("bank_code", account.BankCode).
		Msg("bank account added")
	return account, nil
}

func (s *Service) ListBankAccounts(ctx context.Context, userID uint) ([]models.BankAccount, error) {
	out, err := s.store.BankAccounts.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrStorage.WithError(err)
	}
	return out, nil
}

// DeleteBankAccount removes an account from the user's list. Withdrawals
// already created against it still resolve it.
func (s *Service) DeleteBankAccount(ctx context.Context, userID, id uint) error {
	if err := s.store.BankAccounts.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repositories.ErrBankAccountNotFound) {
			return ErrBankAccountNotFound
		}
		return apperrors.ErrStorage.WithError(err)
	}
	logger.Info().Uint("user_id", userID).Uint("bank_account_id", id).Msg("bank account deleted")
	return nil
}
