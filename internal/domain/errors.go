package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation malformed input; reported to the caller, never retried.
	ErrValidation = errors.New("validation error")
	// ErrInvalidTransition action not permitted in the alert's current status.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNotFound referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden caller lacks the required role.
	ErrForbidden = errors.New("forbidden")
	// ErrPersistence underlying store failure.
	ErrPersistence = errors.New("persistence error")
)

// InvalidTransitionError carries the status the alert was in when the action was refused.
type InvalidTransitionError struct {
	Action  ActionType
	Current AlertStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Alert is already %s", e.Current.Display())
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// Validationf returns an error wrapping ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf returns an error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Persistence wraps err with ErrPersistence and op context; nil stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}
