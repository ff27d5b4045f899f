package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in
	// the store. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction fails to commit
	// or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrProjectNotFound indicates the requested project does not exist.
	ErrProjectNotFound = fmt.Errorf("%w: project", ErrNotFound)

	// ErrTemplateNotFound indicates the requested template (habit, chore,
	// metric or person) does not exist.
	ErrTemplateNotFound = fmt.Errorf("%w: template", ErrNotFound)

	// ErrTaskNotFound indicates the requested inbox task does not exist.
	ErrTaskNotFound = fmt.Errorf("%w: inbox task", ErrNotFound)

	// ErrVacationNotFound indicates the requested vacation does not exist.
	ErrVacationNotFound = fmt.Errorf("%w: vacation", ErrNotFound)

	// ErrLinkNotFound indicates no sync link exists for the entity.
	ErrLinkNotFound = fmt.Errorf("%w: sync link", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with
// additional context.
type StoreError struct {
	Entity    string // the entity kind, e.g. "habit"
	Operation string // the operation that failed, e.g. "create"
	Err       error  // original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s operation on %s failed: %v", e.Operation, e.Entity, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, operation string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, Err: err}
}
