package pgsession

import "time"

// ErrorClassifier determines whether an error is transient (retryable) or permanent.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the unit of
	// work should be retried. Must be total: never panics, nil is not transient.
	IsTransient(err error) bool
}

// BackoffStrategy calculates the delay before the next retry attempt.
type BackoffStrategy interface {
	// NextDelay returns the duration to wait before the next attempt.
	// attempt is zero-indexed (0 = first retry, 1 = second retry, etc.)
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts after the
	// initial attempt (0 = no retries).
	MaxAttempts() int
}
