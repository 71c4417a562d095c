package errors

import "net/http"

var (
	ErrMalformedEvent = &DomainError{
		Code:       "MALFORMED_EVENT",
		Message:    "webhook payload is missing required fields",
		HTTPStatus: http.StatusBadRequest,
	}
	// ErrDuplicateEvent marks an idempotent replay. Callers treat it as success.
	ErrDuplicateEvent = &DomainError{
		Code:       "DUPLICATE_EVENT",
		Message:    "event already processed",
		HTTPStatus: http.StatusOK,
	}
)
