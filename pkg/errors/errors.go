package errors

import (
	"errors"
	"fmt"
)

// ── Shared sentinels ──

var (
	// ErrNotFound covers unknown events, slots, participants and registrations.
	ErrNotFound = errors.New("record not found")

	// ErrGone marks an invalid or expired manage token.
	ErrGone = errors.New("manage link invalid or expired")

	// ErrOptimisticLock means a record was modified by another operation.
	ErrOptimisticLock = errors.New("record was modified by another operation, retry")
)

// ── Typed errors ──

// ValidationError is malformed or inconsistent input, rejected before any write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ConflictError is a retryable allocation conflict: the caller may resubmit
// with a different selection.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// Conflictf builds a ConflictError.
func Conflictf(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

// ── Classification helpers ──

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsGone(err error) bool { return errors.Is(err, ErrGone) }
