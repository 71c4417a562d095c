package errors

import "net/http"

var (
	ErrBelowMinimum = &DomainError{
		Code:       "AMOUNT_BELOW_MINIMUM",
		Message:    "amount is below the minimum withdrawal",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
	ErrAlreadyProcessed = &DomainError{
		Code:       "ALREADY_PROCESSED",
		Message:    "withdrawal already processed",
		HTTPStatus: http.StatusConflict,
	}
	ErrInvalidTransition = &DomainError{
		Code:       "INVALID_TRANSITION",
		Message:    "withdrawal cannot move to the requested state",
		HTTPStatus: http.StatusConflict,
	}

	// ErrProviderDefinite means the payout provider explicitly rejected the
	// transfer. Funds were not sent and may be refunded.
	ErrProviderDefinite = &DomainError{
		Code:       "PROVIDER_DEFINITE_FAILURE",
		Message:    "payout rejected by provider",
		HTTPStatus: http.StatusBadGateway,
	}
	// ErrProviderAmbiguous means the outcome is unknown (timeout, transport
	// failure, unreadable response). Funds must not be refunded automatically.
	ErrProviderAmbiguous = &DomainError{
		Code:       "PROVIDER_AMBIGUOUS_FAILURE",
		Message:    "payout outcome unknown",
		HTTPStatus: http.StatusGatewayTimeout,
	}
)
