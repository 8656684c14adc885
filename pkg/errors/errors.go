package errors

import (
	"errors"
	"fmt"
)

// Application error taxonomy. Validation and challenge failures are expected
// control flow and are reported as typed results; the rest are infrastructure
// failures that end up as a generic internal error for the caller.

var (
	// ErrValidation indicates user-correctable, field-scoped input problems
	ErrValidation = errors.New("validation failed")

	// ErrChallenge indicates the bot challenge was missing or rejected
	ErrChallenge = errors.New("challenge failed")

	// ErrConfiguration indicates missing operator configuration
	ErrConfiguration = errors.New("configuration error")

	// ErrSecretNotFound indicates the secret store record lacks a named key
	ErrSecretNotFound = errors.New("secret not found")

	// ErrTransport indicates a connection, DNS or timeout failure
	ErrTransport = errors.New("transport error")

	// ErrMaxRetriesExceeded indicates the retry budget was spent on transport failures
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// ConfigurationError creates a configuration error naming the missing setting
func ConfigurationError(setting string) error {
	return fmt.Errorf("%s is not configured: %w", setting, ErrConfiguration)
}

// SecretNotFoundError creates a secret-not-found error with context
func SecretNotFoundError(name string) error {
	return fmt.Errorf("%s %w", name, ErrSecretNotFound)
}

// TransportError marks err as a transport-level failure
func TransportError(err error) error {
	return fmt.Errorf("%w: %w", ErrTransport, err)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
