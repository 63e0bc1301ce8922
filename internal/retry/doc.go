// Package retry provides automatic retry logic with exponential backoff
// for transient database failures.
//
// The package supports pluggable error classification and backoff
// strategies, and is used both for connection-pool construction and for
// unit-of-work execution.
//
// # Example Usage
//
//	classifier := retry.NewPostgreSQLErrorClassifier()
//	strategy := retry.NewExponentialBackoff(3)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	attempts, err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return connectToDatabase(ctx)
//	})
//
// # Error Classification
//
// The Classifier interface determines which errors are transient
// (retryable) versus permanent. The PostgreSQLErrorClassifier recognizes an
// explicit transient tag (a Transient() bool method on the error), pgconn
// error codes, network-level failures, and common connection error
// messages as a driver-boundary fallback.
//
// # Thread Safety
//
// Executor instances are safe for concurrent use. Use WithOnRetry() to
// create independent configurations per goroutine.
package retry
