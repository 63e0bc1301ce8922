package pgsession

import (
	"context"
	"errors"
	"fmt"
)

// OperationFunc is one logical unit of work. It receives a Session bound to
// an open transaction; returning nil commits, returning an error rolls back.
// The function may run more than once: it must be safe to restart from the
// beginning, which is exactly what transactional scoping guarantees.
type OperationFunc func(ctx context.Context, s Session) error

// Do runs fn as a resilient unit of work.
//
// Each attempt borrows a connection (waiting up to PoolTimeout), begins a
// transaction, runs fn, and commits. On failure the transaction is rolled
// back (best effort, rollback failures are logged and never mask the
// original error), the connection is released, and the error is classified:
//
//   - permanent: returned immediately as *DatabaseError wrapping the cause
//   - transient: the whole unit of work is retried after an exponential
//     backoff delay of RetryBaseDelay * 2^k for retry index k, up to
//     MaxRetries times; exhaustion returns *RetryExhaustedError
//
// Retrying happens at unit-of-work granularity because a partially applied
// transaction must never be half-committed; the only safe retry point is
// starting the transaction over.
//
// Context cancellation interrupts both the acquisition wait and the backoff
// sleep and is returned as ctx.Err(), never classified as transient.
// ErrNotInitialized is returned unchanged when the manager is not Ready.
func (m *Manager) Do(ctx context.Context, fn OperationFunc) error {
	if _, err := m.Pool(); err != nil {
		return err
	}

	attempts, err := m.executor.Execute(ctx, func(ctx context.Context) error {
		return m.runOnce(ctx, fn)
	})
	if err == nil {
		return nil
	}

	switch {
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return err
	case errors.Is(err, ErrNotInitialized):
		// Pool was closed between attempts; a lifecycle race the caller
		// must resolve, not a database failure.
		return err
	case m.classifier.IsTransient(err):
		// The executor only surfaces a transient error once the retry
		// budget is spent.
		return &RetryExhaustedError{Attempts: attempts, Cause: err}
	default:
		return &DatabaseError{Cause: err}
	}
}

// runOnce performs a single attempt: acquire, begin, execute, commit.
// The borrowed connection is released exactly once on every exit path.
func (m *Manager) runOnce(ctx context.Context, fn OperationFunc) error {
	u, err := m.open(ctx)
	if err != nil {
		return err
	}
	defer u.Close()

	if err := fn(ctx, u.Session()); err != nil {
		if rbErr := u.Rollback(ctx); rbErr != nil {
			m.log.Warn("rollback failed: %v", rbErr)
		}
		return err
	}

	// A commit failure is handled exactly like an operation failure:
	// roll back, classify, retry or propagate.
	if err := u.Commit(ctx); err != nil {
		if rbErr := u.Rollback(ctx); rbErr != nil {
			m.log.Warn("rollback after failed commit: %v", rbErr)
		}
		return err
	}

	return nil
}

// openPoolUnit borrows a connection from the pool, bounded by PoolTimeout,
// and begins a transaction on it.
func (m *Manager) openPoolUnit(ctx context.Context) (unit, error) {
	pool, err := m.Pool()
	if err != nil {
		return nil, err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, m.cfg.PoolTimeout)
	defer cancel()

	conn, err := pool.Acquire(acquireCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrPoolTimeout, m.cfg.PoolTimeout)
		}
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Release()
		return nil, err
	}

	return &poolUnit{conn: conn, tx: tx}, nil
}
