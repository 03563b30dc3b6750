package services

import (
	"errors"
	"fmt"
)

// Every failure a service returns wraps exactly one of these kinds.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrConflict            = errors.New("conflict")
)

// ErrInvalidCredentials is a validation failure that must not reveal which part was wrong.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrValidation)

// Error carries a user-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (err *Error) Error() string {
	if err.Cause != nil {
		return fmt.Sprintf("%s: %v", err.Message, err.Cause)
	}
	return err.Message
}

func (err *Error) Unwrap() []error {
	if err.Cause != nil {
		return []error{err.Kind, err.Cause}
	}
	return []error{err.Kind}
}

func notFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func invalid(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func upstream(message string, cause error) error {
	return &Error{Kind: ErrUpstreamUnavailable, Message: message, Cause: cause}
}

// Message returns the user-facing text of err, or fallback when err has none.
func Message(err error, fallback string) string {
	var serviceErr *Error
	if errors.As(err, &serviceErr) && serviceErr.Message != "" {
		return serviceErr.Message
	}
	if errors.Is(err, ErrInvalidCredentials) {
		return "invalid credentials"
	}
	return fallback
}
