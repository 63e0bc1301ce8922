// Package pgsession provides a resilient PostgreSQL session layer built on
// pgx/v5: an explicit connection-pool lifecycle manager, a transactional
// unit-of-work scope with automatic retry on transient failures, and a
// liveness health check.
//
// # Architecture
//
// Three cooperating building blocks:
//
//   - Config – declarative pool and retry settings (connection URL, pool
//     size, overflow, acquisition timeout, retry budget, backoff base delay).
//
//   - Manager – owns exactly one connection pool between Init and Close.
//     The pool reference is guarded by a mutex; lifecycle transitions must
//     be serialized by the caller, concurrent units of work need not be.
//
//   - Manager.Do – runs one transactional unit of work: acquire, begin,
//     execute, commit on success, roll back on failure, release always.
//     Transient failures restart the whole unit of work with exponential
//     backoff; the transaction is the only safe retry boundary.
//
// # Example Usage
//
//	mgr := pgsession.New(pgsession.DefaultConfig(os.Getenv("DATABASE_URL")))
//	if err := mgr.Init(ctx); err != nil {
//	    return err
//	}
//	defer mgr.Close()
//
//	err := mgr.Do(ctx, func(ctx context.Context, s pgsession.Session) error {
//	    _, err := s.Exec(ctx, "INSERT INTO events (kind) VALUES ($1)", "signup")
//	    return err
//	})
//
// # Error Handling
//
// Callers see exactly one of five error kinds, never a raw driver error:
// a *SetupError from Init, ErrNotInitialized from operations on a closed or
// uninitialized manager, ErrPoolTimeout when no connection frees up in time
// (retried internally), a *DatabaseError wrapping a permanent failure, or a
// *RetryExhaustedError carrying the attempt count and last transient cause.
package pgsession
