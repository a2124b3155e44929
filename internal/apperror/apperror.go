// Package apperror defines the domain error types shared by every layer.
//
// The three failure kinds in this system map onto three sentinel errors:
// validation failures (rejected before storage), unresolvable caller
// identities, and missing entities. Anything else is a backend failure and
// surfaces as a generic server error at the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel cause, checked with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports an absent entity by its numeric ID.
// Absence is an expected outcome, never a fatal error — handlers map it to 404.
func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// NotFoundFor reports an absent entity looked up by a non-ID attribute,
// e.g. a user by email or external identity.
func NotFoundFor(resource, field, value string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with %s %s", resource, field, value),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Unauthorized returns an AppError for an unresolvable caller identity.
// The message is intentionally uniform regardless of the reason — a missing
// token, a bad signature, and an unknown subject all look the same to the
// client. HTTP handlers map this to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
