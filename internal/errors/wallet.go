package errors

import "net/http"

var (
	ErrInsufficientFunds = &DomainError{
		Code:       "INSUFFICIENT_FUNDS",
		Message:    "insufficient wallet balance",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidAmount = &DomainError{
		Code:       "INVALID_AMOUNT",
		Message:    "invalid amount",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrInvalidEntryType = &DomainError{
		Code:       "INVALID_ENTRY_TYPE",
		Message:    "ledger entry type must be credit or debit",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrWalletNotFound = &DomainError{
		Code:       "WALLET_NOT_FOUND",
		Message:    "wallet not found",
		HTTPStatus: http.StatusNotFound,
	}
	ErrDuplicateReference = &DomainError{
		Code:       "DUPLICATE_REFERENCE",
		Message:    "ledger reference already used",
		HTTPStatus: http.StatusConflict,
	}
)
