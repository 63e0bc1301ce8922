package pgsession

import (
	"fmt"
	"time"
)

// Config controls pool sizing and retry behavior for a Manager.
// The zero value is not usable directly: URL is required, and the
// positive-valued fields are filled with defaults by normalize().
// MaxRetries and MaxOverflow are meaningful at zero (no retries, no
// overflow), so they are never defaulted implicitly; use DefaultConfig
// for the documented defaults.
type Config struct {
	// URL is the PostgreSQL connection string. Required.
	URL string

	// PoolSize is the number of connections the pool keeps ready.
	PoolSize int32

	// MaxOverflow is the number of additional connections allowed beyond
	// PoolSize under load. Zero means the pool is capped at PoolSize.
	MaxOverflow int32

	// PoolTimeout bounds how long a unit of work waits for a free
	// connection before failing with ErrPoolTimeout.
	PoolTimeout time.Duration

	// MaxRetries is the number of retry attempts after the initial attempt
	// of a unit of work. Zero means a single attempt, no retry.
	MaxRetries int

	// RetryBaseDelay is the backoff delay before the first retry.
	// Retry k (zero-indexed) waits RetryBaseDelay * 2^k.
	RetryBaseDelay time.Duration

	// MaxRetryDelay caps the exponential backoff delay.
	MaxRetryDelay time.Duration
}

// DefaultConfig returns a Config for the given connection URL with all
// tuning fields set to the documented defaults.
func DefaultConfig(url string) Config {
	return Config{
		URL:            url,
		PoolSize:       DefaultPoolSize,
		MaxOverflow:    DefaultMaxOverflow,
		PoolTimeout:    DefaultPoolTimeout,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
		MaxRetryDelay:  DefaultMaxRetryDelay,
	}
}

// normalize fills defaults for the fields that must be positive.
// MaxRetries and MaxOverflow stay as provided: zero is a valid setting.
func (c Config) normalize() Config {
	if c.PoolSize <= 0 {
		c.PoolSize = DefaultPoolSize
	}
	if c.PoolTimeout <= 0 {
		c.PoolTimeout = DefaultPoolTimeout
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = DefaultMaxRetryDelay
	}
	return c
}

// Validate reports whether the configuration can construct a pool.
// A missing URL is a configuration error, never a transient one.
func (c Config) Validate() error {
	if c.URL == "" {
		return ErrMissingURL
	}
	if c.MaxOverflow < 0 {
		return fmt.Errorf("max overflow must be non-negative, got %d", c.MaxOverflow)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", c.MaxRetries)
	}
	return nil
}

// maxConns is the hard cap on pool connections: the steady pool plus overflow.
func (c Config) maxConns() int32 {
	return c.PoolSize + c.MaxOverflow
}
