package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTrade marks input rejected before it reaches the store.
	// Nothing is appended and no aggregate changes.
	ErrInvalidTrade = errors.New("invalid trade input")

	// ErrStoreUnavailable marks a persistence failure during append or
	// recompute. The operation is safe to retry; the service never
	// substitutes a stale or partial aggregate.
	ErrStoreUnavailable = errors.New("trade store unavailable")
)

// ValidationError reports which input field failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid trade input: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTrade }

func invalidField(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
