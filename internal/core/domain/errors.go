package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced item or order does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input was rejected before any ledger interaction.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is a concurrent-mutation transaction conflict. Mutating
	// operations retry it a bounded number of times before surfacing it.
	ErrConflict = errors.New("transaction conflict")

	// ErrDuplicateRequest means an idempotency key was already consumed.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// InsufficientStockError rejects an allocation that exceeds the item's
// available stock. The fields are user-facing diagnostics.
type InsufficientStockError struct {
	ItemName  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %s (available: %d, requested: %d)",
		e.ItemName, e.Available, e.Requested)
}
