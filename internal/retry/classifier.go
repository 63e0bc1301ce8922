package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Classifier determines whether an error is transient (retryable) or permanent.
type Classifier interface {
	// IsTransient returns true if the error is temporary and the operation
	// should be retried. Total: never panics, nil is not transient.
	IsTransient(err error) bool
}

// PostgreSQL error codes for transient conditions
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	// Class 40 - Transaction Rollback
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"

	// Class 55 - Object Not In Prerequisite State
	pgCodeLockNotAvailable = "55P03"
)

// transienter is the explicit transient tag carried by errors from the
// session layer (e.g. pool acquisition timeouts). Checking the tag keeps
// classification typed instead of matching on message text.
type transienter interface {
	Transient() bool
}

// PostgreSQLErrorClassifier implements Classifier for PostgreSQL-specific errors.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Explicitly tagged errors carry their own verdict.
	var tagged transienter
	if errors.As(err, &tagged) {
		return tagged.Transient()
	}

	// Check for PostgreSQL-specific errors
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return c.isTransientPgError(pgErr)
	}

	// Check for network-level errors
	if c.isNetworkError(err) {
		return true
	}

	// Check for connection errors
	if c.isConnectionError(err) {
		return true
	}

	return false
}

// isTransientPgError checks PostgreSQL error codes for transient conditions.
func (c *PostgreSQLErrorClassifier) isTransientPgError(pgErr *pgconn.PgError) bool {
	// PostgreSQL error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
	code := pgErr.Code

	// Class 08 - Connection Exception
	if strings.HasPrefix(code, "08") {
		return true
	}

	// Class 53 - Insufficient Resources (includes 53300 too many connections)
	if strings.HasPrefix(code, "53") {
		return true
	}

	// Class 57 - Operator Intervention (admin shutdown, crash shutdown, etc.)
	if strings.HasPrefix(code, "57") {
		return true
	}

	switch code {
	// Class 40 - Transaction Rollback (deadlock, serialization failure)
	case pgCodeSerializationFailure,
		pgCodeDeadlockDetected:
		return true

	// Class 55 - Object Not In Prerequisite State
	case pgCodeLockNotAvailable:
		return true
	}

	return false
}

// isNetworkError checks for network-level errors.
func (c *PostgreSQLErrorClassifier) isNetworkError(err error) bool {
	// DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		// Temporary DNS failures are retryable
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	// Network operation errors
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// Temporary network errors are retryable
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}

		// Check underlying error
		if opErr.Err != nil {
			// Connection refused (server not ready)
			if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
				return true
			}

			// Connection reset by peer
			if errors.Is(opErr.Err, syscall.ECONNRESET) {
				return true
			}

			// Network unreachable
			if errors.Is(opErr.Err, syscall.ENETUNREACH) {
				return true
			}

			// Host unreachable
			if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
				return true
			}
		}
	}

	return false
}

// isConnectionError checks for connection-related errors from the driver
// boundary by message, the fallback when no typed information survives.
func (c *PostgreSQLErrorClassifier) isConnectionError(err error) bool {
	errMsg := strings.ToLower(err.Error())

	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"connection timed out",
		"connection failure",
		"server closed the connection",
		"deadlock detected",
		"connection pool exhausted",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"broken pipe",
		"too many connections",
		"unexpected eof",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

var _ Classifier = (*PostgreSQLErrorClassifier)(nil)
