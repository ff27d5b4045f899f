package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyName is returned when an entity name is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidPeriod is returned when a recurrence period is not one of
	// the known period kinds.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidSkipRule is returned when a skip rule is malformed.
	ErrInvalidSkipRule = errors.New("invalid skip rule")

	// ErrInvalidDateRange is returned when a date range's start is not
	// before its end.
	ErrInvalidDateRange = errors.New("start date must be before end date")

	// ErrInvalidTaskStatus is returned when a task status is not valid.
	ErrInvalidTaskStatus = errors.New("invalid task status")
)

// ConfigurationError reports an invalid recurrence configuration on a
// template: a due or actionable offset that does not resolve to a date
// inside the period interval, or a malformed skip rule. It fails the single
// template it belongs to; batch operations carry on with the rest.
type ConfigurationError struct {
	Field string // the offending field, e.g. "due_at_day"
	Msg   string
	Err   error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error in %s: %s: %v", e.Field, e.Msg, e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Msg)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a ConfigurationError for the given field.
func NewConfigurationError(field, msg string) *ConfigurationError {
	return &ConfigurationError{Field: field, Msg: msg}
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
