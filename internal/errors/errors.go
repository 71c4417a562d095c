// Package errors defines the domain error taxonomy shared by the ledger
// services and the HTTP layer.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// DomainError is a classified failure. Code identifies the class and is what
// errors.Is compares, so a copy produced by WithError still matches its sentinel.
type DomainError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

func (e *DomainError) WithError(err error) *DomainError {
	c := *e
	c.Err = err
	return &c
}

func (e *DomainError) WithMessage(msg string) *DomainError {
	c := *e
	c.Message = msg
	return &c
}

func (e *DomainError) WithDetails(details any) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// As returns the first DomainError in err's chain.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Is is errors.Is, re-exported so callers importing this package do not need
// the standard library package under another name.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// HTTPStatus maps err to a status code, 500 for unclassified errors.
func HTTPStatus(err error) int {
	if de, ok := As(err); ok && de.HTTPStatus != 0 {
		return de.HTTPStatus
	}
	return http.StatusInternalServerError
}

// Retryable reports whether the caller may retry the operation unchanged.
func Retryable(err error) bool {
	return Is(err, ErrStorage) || Is(err, ErrProviderAmbiguous)
}

var (
	ErrValidation = &DomainError{
		Code:       "VALIDATION_ERROR",
		Message:    "invalid input",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
	ErrNotFound = &DomainError{
		Code:       "RESOURCE_NOT_FOUND",
		Message:    "resource not found",
		HTTPStatus: http.StatusNotFound,
	}
	ErrConflict = &DomainError{
		Code:       "CONFLICT",
		Message:    "resource already exists",
		HTTPStatus: http.StatusConflict,
	}
	ErrStorage = &DomainError{
		Code:       "STORAGE_ERROR",
		Message:    "storage unavailable",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrInternal = &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "something went wrong",
		HTTPStatus: http.StatusInternalServerError,
	}
)
