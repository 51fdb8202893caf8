// Package apperr defines the failure kinds reported by the group and message services.
// Callers compare with errors.Is; messages never contain user identifiers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAlreadyMember   = errors.New("already a member of this group")
	ErrInvalidReceiver = errors.New("receiver is not a member of this group")
	ErrSelfMessage     = errors.New("cannot send a message to yourself")
	ErrCodeExhausted   = errors.New("could not allocate a unique invite code")

	ErrInvalidMessage = fmt.Errorf("%w: message text must be 1-1000 characters", ErrValidation)
)

// Validation wraps a human readable reason as a validation error.
func Validation(reason string) error {
	return fmt.Errorf("%w: %s", ErrValidation, reason)
}

// StatusCode maps an error to the HTTP status reported to the client.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInvalidReceiver),
		errors.Is(err, ErrSelfMessage):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyMember):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
