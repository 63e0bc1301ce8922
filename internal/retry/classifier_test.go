package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgreSQLErrorClassifier_IsTransient_PostgreSQLErrors(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		// Transient PostgreSQL errors
		{
			name:        "connection_exception (08000)",
			err:         &pgconn.PgError{Code: "08000", Message: "connection exception"},
			isTransient: true,
		},
		{
			name:        "connection_failure (08006)",
			err:         &pgconn.PgError{Code: "08006", Message: "connection failure"},
			isTransient: true,
		},
		{
			name:        "insufficient_resources (53000)",
			err:         &pgconn.PgError{Code: "53000", Message: "insufficient resources"},
			isTransient: true,
		},
		{
			name:        "too_many_connections (53300)",
			err:         &pgconn.PgError{Code: "53300", Message: "too many connections"},
			isTransient: true,
		},
		{
			name:        "admin_shutdown (57P01)",
			err:         &pgconn.PgError{Code: "57P01", Message: "terminating connection due to administrator command"},
			isTransient: true,
		},
		{
			name:        "serialization_failure (40001)",
			err:         &pgconn.PgError{Code: "40001", Message: "could not serialize access"},
			isTransient: true,
		},
		{
			name:        "deadlock_detected (40P01)",
			err:         &pgconn.PgError{Code: "40P01", Message: "deadlock detected"},
			isTransient: true,
		},
		{
			name:        "lock_not_available (55P03)",
			err:         &pgconn.PgError{Code: "55P03", Message: "lock not available"},
			isTransient: true,
		},

		// Permanent PostgreSQL errors
		{
			name:        "syntax_error (42601)",
			err:         &pgconn.PgError{Code: "42601", Message: "syntax error"},
			isTransient: false,
		},
		{
			name:        "undefined_table (42P01)",
			err:         &pgconn.PgError{Code: "42P01", Message: "relation does not exist"},
			isTransient: false,
		},
		{
			name:        "unique_violation (23505)",
			err:         &pgconn.PgError{Code: "23505", Message: "duplicate key value"},
			isTransient: false,
		},
		{
			name:        "invalid_password (28P01)",
			err:         &pgconn.PgError{Code: "28P01", Message: "password authentication failed"},
			isTransient: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsTransient(tt.err); got != tt.isTransient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.isTransient)
			}
		})
	}
}

func TestPostgreSQLErrorClassifier_IsTransient_NetworkErrors(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		{
			name:        "connection refused",
			err:         &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
			isTransient: true,
		},
		{
			name:        "connection reset",
			err:         &net.OpError{Op: "read", Err: syscall.ECONNRESET},
			isTransient: true,
		},
		{
			name:        "network unreachable",
			err:         &net.OpError{Op: "dial", Err: syscall.ENETUNREACH},
			isTransient: true,
		},
		{
			name:        "dns timeout",
			err:         &net.DNSError{Err: "lookup timed out", IsTimeout: true},
			isTransient: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsTransient(tt.err); got != tt.isTransient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.isTransient)
			}
		})
	}
}

func TestPostgreSQLErrorClassifier_IsTransient_MessagePatterns(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	transientMessages := []string{
		"connection refused",
		"connection reset by peer",
		"connection timed out",
		"server closed the connection unexpectedly",
		"deadlock detected",
		"connection pool exhausted",
		"unexpected EOF",
	}

	for _, msg := range transientMessages {
		if !classifier.IsTransient(errors.New(msg)) {
			t.Errorf("Expected %q to classify as transient", msg)
		}
	}

	permanentMessages := []string{
		"syntax error at or near SELECT",
		"permission denied for table users",
		"null value in column violates not-null constraint",
	}

	for _, msg := range permanentMessages {
		if classifier.IsTransient(errors.New(msg)) {
			t.Errorf("Expected %q to classify as permanent", msg)
		}
	}
}

type taggedError struct {
	transient bool
}

func (e *taggedError) Error() string   { return "tagged" }
func (e *taggedError) Transient() bool { return e.transient }

func TestPostgreSQLErrorClassifier_IsTransient_ExplicitTag(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	if !classifier.IsTransient(&taggedError{transient: true}) {
		t.Error("Expected tagged transient error to classify as transient")
	}
	if classifier.IsTransient(&taggedError{transient: false}) {
		t.Error("Expected tagged non-transient error to classify as permanent")
	}

	// The tag survives wrapping
	wrapped := fmt.Errorf("acquire: %w", &taggedError{transient: true})
	if !classifier.IsTransient(wrapped) {
		t.Error("Expected wrapped tagged error to classify as transient")
	}
}

func TestPostgreSQLErrorClassifier_IsTransient_ContextErrors(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	if classifier.IsTransient(context.Canceled) {
		t.Error("Cancellation must never classify as transient")
	}
	if classifier.IsTransient(context.DeadlineExceeded) {
		t.Error("Deadline expiry must never classify as transient")
	}
	if classifier.IsTransient(nil) {
		t.Error("nil must not classify as transient")
	}
}
