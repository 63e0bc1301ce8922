package pgsession

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := mgr.Pool()
//	if errors.Is(err, pgsession.ErrNotInitialized) {
//	    // Init was never called, or Close already ran
//	}
var (
	// ErrNotInitialized indicates an operation was invoked before Init
	// or after Close. This is a programming error and is never retried.
	ErrNotInitialized = errors.New("session manager not initialized, call Init first")

	// ErrMissingURL indicates the configuration has no connection URL.
	ErrMissingURL = errors.New("connection URL is required")
)

// ErrPoolTimeout indicates no pooled connection became free within the
// configured PoolTimeout. The error carries a transient tag so the retry
// classifier treats pool exhaustion as retryable.
var ErrPoolTimeout error = &transientError{msg: "timed out waiting for a free pooled connection"}

// transientError is an error variant carrying an explicit transient tag,
// recognized by the retry classifier without message inspection.
type transientError struct {
	msg string
}

func (e *transientError) Error() string { return e.msg }

// Transient marks the error as retryable.
func (e *transientError) Transient() bool { return true }

// SetupError indicates the configuration was invalid or pool construction
// failed. Fatal: surfaced to the caller of Init and never retried.
type SetupError struct {
	Cause error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("connection setup failed: %v", e.Cause)
}

func (e *SetupError) Unwrap() error { return e.Cause }

// DatabaseError wraps a permanent underlying failure raised during a unit
// of work. Surfaced immediately without retry; the original driver error
// is preserved for diagnostics.
type DatabaseError struct {
	Cause error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database operation failed: %v", e.Cause)
}

func (e *DatabaseError) Unwrap() error { return e.Cause }

// RetryExhaustedError indicates transient failures persisted past the retry
// budget. Attempts counts every attempt made, including the first.
type RetryExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts, last error: %v", e.Attempts, e.Cause)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Cause }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var setupErr *SetupError
	var retryErr *RetryExhaustedError
	var dbErr *DatabaseError

	switch {
	case errors.Is(err, ErrMissingURL):
		return ExitConfigError
	case errors.As(err, &setupErr):
		return ExitConnectionError
	case errors.Is(err, ErrNotInitialized):
		return ExitNotInitialized
	case errors.As(err, &retryErr):
		return ExitRetryExhausted
	case errors.As(err, &dbErr):
		return ExitDatabaseError
	}

	return ExitGeneralError
}
