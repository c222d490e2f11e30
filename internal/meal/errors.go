package meal

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a mutation names an id the store doesn't have.
var ErrNotFound = errors.New("meal not found")

// ValidationError rejects a create/update before any store call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreError wraps a transport/backend failure from the record store.
type StoreError struct {
	Op  string // "list", "insert", "update", "delete"
	Err error
}

func (e *StoreError) Error() string { return "store " + e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }
