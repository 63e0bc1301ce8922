package pgsession

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgsession/internal/logging"
	"github.com/vvka-141/pgsession/internal/retry"
)

// Manager owns the process-wide connection pool ("engine") and runs
// resilient units of work against it. It is an explicit, injectable handle:
// tests and applications construct independent instances, there is no
// package-level singleton.
//
// Lifecycle: Uninitialized -> Ready via Init, Ready -> Uninitialized via
// Close, Ready -> Ready via re-Init (the prior pool is closed first).
// Concurrent units of work are safe; concurrent lifecycle transitions must
// be serialized by the caller.
type Manager struct {
	cfg        Config
	log        Logger
	connector  Connector
	classifier ErrorClassifier
	strategy   BackoffStrategy
	executor   *retry.Executor

	mu   sync.RWMutex
	pool *pgxpool.Pool

	// open produces one transactional unit of work per attempt.
	open func(ctx context.Context) (unit, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for lifecycle and retry events.
func WithLogger(log Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithConnector replaces the default PoolConnector, e.g. with a cloud IAM
// authenticated connector.
func WithConnector(c Connector) Option {
	return func(m *Manager) {
		m.connector = c
	}
}

// WithClassifier replaces the default transient-error classifier.
func WithClassifier(c ErrorClassifier) Option {
	return func(m *Manager) {
		m.classifier = c
	}
}

// WithBackoff replaces the default exponential backoff strategy.
// The strategy's MaxAttempts takes precedence over Config.MaxRetries.
func WithBackoff(s BackoffStrategy) Option {
	return func(m *Manager) {
		m.strategy = s
	}
}

// New creates an uninitialized Manager for the given configuration.
// Tuning fields that must be positive are defaulted; call Init to
// construct the pool.
func New(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg: cfg.normalize(),
		log: logging.NewNullLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.connector == nil {
		m.connector = NewPoolConnector(m.cfg)
	}
	if m.classifier == nil {
		m.classifier = retry.NewPostgreSQLErrorClassifier()
	}
	if m.strategy == nil {
		m.strategy = retry.NewExponentialBackoff(m.cfg.MaxRetries,
			retry.WithInitialDelay(m.cfg.RetryBaseDelay),
			retry.WithMaxDelay(m.cfg.MaxRetryDelay),
		)
	}

	m.executor = retry.NewExecutor(m.classifier, m.strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			m.log.Warn("transient database error (attempt %d/%d): %v, retrying in %s",
				attempt+1, m.strategy.MaxAttempts()+1, err, delay)
		})

	m.open = m.openPoolUnit

	return m
}

// Init constructs the connection pool. A missing or malformed connection
// URL, or a pool construction failure, is reported as *SetupError; the
// manager stays Uninitialized in that case.
//
// Calling Init on a Ready manager closes the prior pool before replacing
// it, so re-initialization cannot leak connections.
func (m *Manager) Init(ctx context.Context) error {
	if err := m.cfg.Validate(); err != nil {
		return &SetupError{Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil {
		m.log.Warn("Init called on a live session manager, closing the previous pool")
		m.pool.Close()
		m.pool = nil
	}

	m.log.Verbose("initializing connection pool (size=%d overflow=%d)",
		m.cfg.PoolSize, m.cfg.MaxOverflow)

	pool, err := m.connector.Connect(ctx)
	if err != nil {
		return &SetupError{Cause: err}
	}

	m.pool = pool
	m.log.Info("database connection pool initialized")
	return nil
}

// Pool returns the current pool handle, or ErrNotInitialized when Init was
// never called or the pool was closed.
func (m *Manager) Pool() (*pgxpool.Pool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.pool == nil {
		return nil, ErrNotInitialized
	}
	return m.pool, nil
}

// Stat reports pool statistics, useful for verifying that units of work
// return their connections.
func (m *Manager) Stat() (*pgxpool.Stat, error) {
	pool, err := m.Pool()
	if err != nil {
		return nil, err
	}
	return pool.Stat(), nil
}

// Close disposes the pool and clears the manager state so a subsequent
// Init starts fresh. Safe to call when already closed.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool == nil {
		return
	}

	m.log.Info("closing database connection pool")
	m.pool.Close()
	m.pool = nil
}
