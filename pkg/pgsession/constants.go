package pgsession

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Operation completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to database
	ExitNotInitialized  = 12 // Operation invoked before Init or after Close
	ExitRetryExhausted  = 13 // Transient failures persisted past the retry budget
	ExitDatabaseError   = 14 // Permanent database failure
)

const (
	// DefaultPoolSize is the number of connections the pool keeps ready.
	DefaultPoolSize = 5

	// DefaultMaxOverflow is the number of additional connections the pool
	// may open beyond DefaultPoolSize under load.
	DefaultMaxOverflow = 10

	// DefaultPoolTimeout bounds how long an acquisition waits for a free
	// connection before failing with ErrPoolTimeout.
	DefaultPoolTimeout = 30 * time.Second

	// DefaultMaxRetries is the default number of retry attempts after the
	// initial attempt of a unit of work.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the backoff delay before the first retry.
	// Retry k (zero-indexed) waits DefaultRetryBaseDelay * 2^k.
	DefaultRetryBaseDelay = 1 * time.Second

	// DefaultMaxRetryDelay caps the exponential backoff delay.
	DefaultMaxRetryDelay = 1 * time.Minute
)
