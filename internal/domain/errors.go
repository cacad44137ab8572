package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals rejected caller input. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrEmbeddingUnavailable signals that the embedding provider errored,
	// timed out or returned a malformed vector. Non-fatal for a search:
	// the pipeline degrades to keyword-only results.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")
	// ErrStoreUnavailable signals that the catalog store could not serve a query.
	ErrStoreUnavailable = errors.New("catalog store unavailable")
	// ErrConfiguration signals missing or inconsistent upstream configuration.
	ErrConfiguration = errors.New("configuration error")
)

// ValidationError wraps ErrValidation with per-field detail so API callers
// can self-correct. Messages are surfaced verbatim.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a field-level validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ValidationMessage extracts the caller-facing message from a validation
// error chain, falling back to the full error text.
func ValidationMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}
