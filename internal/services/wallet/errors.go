package wallet

import (
	"errors"

	apperrors "cashon/internal/errors"
	"cashon/internal/repositories"
)

var (
	ErrMissingReference = apperrors.ErrValidation.WithMessage("ledger reference is required")
	ErrMissingWallet    = apperrors.ErrValidation.WithMessage("wallet id is required")
)

// classify maps repository failures onto the domain taxonomy. Domain errors
// pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrWalletNotFound):
		return apperrors.ErrWalletNotFound
	case repositories.IsUniqueViolation(err):
		return apperrors.ErrDuplicateReference.WithError(err)
	default:
		return apperrors.ErrStorage.WithError(err)
	}
}

func errorCode(err error) string {
	if de, ok := apperrors.As(err); ok {
		return de.Code
	}
	return "UNKNOWN"
}
