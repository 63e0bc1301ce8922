package pgsession

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Session is the caller-facing view of one transactional unit of work.
// All statements run inside the same transaction on one pooled connection.
// The session is only valid for the duration of the Do callback that
// received it; a retried unit of work gets a fresh session.
//
// Thread-Safety: NOT safe for concurrent use. The session is exclusively
// owned by its Do callback.
type Session interface {
	// Exec executes a statement without returning any rows.
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)

	// Query executes a query returning multiple rows.
	// The caller must close the returned rows before the callback returns.
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)

	// QueryRow executes a query that is expected to return at most one row.
	// Always returns a non-nil Row. Errors are deferred until Scan is called.
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// Row represents a single row returned by QueryRow.
// This interface decouples the public API from pgx.Row.
type Row interface {
	// Scan reads the values from the row into dest values.
	// Returns an error if no row was found or if the scan fails.
	Scan(dest ...any) error
}

// unit is one transactional attempt: a session bound to a borrowed
// connection, with commit/rollback control and a guaranteed release.
type unit interface {
	Session() Session
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// Close returns the borrowed connection to the pool. Idempotent; must
	// be called exactly once per acquired unit on every exit path.
	Close()
}

// poolUnit implements unit over a pooled pgx connection and transaction.
type poolUnit struct {
	conn *pgxpool.Conn
	tx   pgx.Tx
}

func (u *poolUnit) Session() Session {
	return &txSession{tx: u.tx}
}

func (u *poolUnit) Commit(ctx context.Context) error {
	if u.tx == nil {
		return errors.New("transaction already completed")
	}
	err := u.tx.Commit(ctx)
	if err == nil {
		u.tx = nil
	}
	return err
}

// Rollback rolls back the transaction. Safe to call after a failed commit:
// a transaction the server already closed reports no error.
func (u *poolUnit) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback(ctx)
	u.tx = nil
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (u *poolUnit) Close() {
	if u.conn != nil {
		u.conn.Release()
		u.conn = nil
	}
}

// txSession adapts pgx.Tx to the Session interface.
type txSession struct {
	tx pgx.Tx
}

func (s *txSession) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.tx.Exec(ctx, sql, args...)
}

func (s *txSession) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.tx.Query(ctx, sql, args...)
}

func (s *txSession) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return s.tx.QueryRow(ctx, sql, args...)
}

var _ Session = (*txSession)(nil)
