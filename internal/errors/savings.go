package errors

import "net/http"

var (
	ErrAlreadyAccrued = &DomainError{
		Code:       "ALREADY_ACCRUED",
		Message:    "interest already accrued for this period",
		HTTPStatus: http.StatusConflict,
	}
	ErrSavingNotActive = &DomainError{
		Code:       "SAVING_NOT_ACTIVE",
		Message:    "saving is not active",
		HTTPStatus: http.StatusConflict,
	}
)
