package retry

import (
	"context"
	"time"
)

// Executor orchestrates retry attempts with backoff and error classification.
//
// Thread Safety:
// The Executor itself is safe for concurrent use when calling Execute().
// WithOnRetry() returns a NEW instance with the callback configured, so each
// goroutine can have its own configuration without shared state.
type Executor struct {
	classifier Classifier
	strategy   Strategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a new retry executor with the given configuration.
// Panics if classifier or strategy is nil.
func NewExecutor(classifier Classifier, strategy Strategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{
		classifier: classifier,
		strategy:   strategy,
	}
}

// WithOnRetry returns a new Executor with the specified retry callback.
// The callback receives the zero-indexed retry attempt, the error that
// triggered the retry, and the delay about to be slept.
//
// This method does NOT modify the receiver; it returns a new instance.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs the operation with retry logic and reports the number of
// attempts made alongside the final outcome.
//
// A nil error means the operation eventually succeeded. A non-nil error is
// either the context's error (cancellation interrupted a wait), a permanent
// error (returned on the attempt that raised it, no retry), or the last
// transient error once the retry budget is exhausted. The backoff delay for
// retry k (zero-indexed) is Strategy.NextDelay(k), computed before the
// retry attempt runs.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) (int, error) {
	maxRetries := e.strategy.MaxAttempts()

	// Initial attempt (not a retry)
	attempts := 1
	lastErr := operation(ctx)
	if lastErr == nil {
		return attempts, nil
	}

	for retryIdx := 0; ; retryIdx++ {
		// Cancellation wins over classification: a caller-initiated abort
		// must never be swallowed as transient.
		if err := ctx.Err(); err != nil {
			return attempts, err
		}

		if !e.classifier.IsTransient(lastErr) {
			return attempts, lastErr
		}

		if retryIdx >= maxRetries && maxRetries >= 0 {
			return attempts, lastErr
		}

		delay := e.strategy.NextDelay(retryIdx)

		if e.onRetry != nil {
			e.onRetry(retryIdx, lastErr, delay)
		}

		// Wait for the backoff period, respecting context cancellation.
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempts, ctx.Err()
		case <-timer.C:
		}

		attempts++
		lastErr = operation(ctx)
		if lastErr == nil {
			return attempts, nil
		}
	}
}
