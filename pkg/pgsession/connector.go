package pgsession

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgsession/internal/retry"
)

// Connector is a unified interface for establishing database connection
// pools. Different implementations handle various authentication methods
// (standard credentials, cloud IAM, etc.).
type Connector interface {
	// Connect establishes a connection pool to the database.
	// The returned pool should be closed by the caller when done.
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// PoolConnector is the default Connector: it builds a pgxpool directly from
// the Config connection URL, retrying transient connect failures with
// exponential backoff before giving up.
type PoolConnector struct {
	cfg      Config
	executor *retry.Executor
}

// NewPoolConnector creates the default connector for the given configuration.
func NewPoolConnector(cfg Config) *PoolConnector {
	cfg = cfg.normalize()
	strategy := retry.NewExponentialBackoff(cfg.MaxRetries,
		retry.WithInitialDelay(cfg.RetryBaseDelay),
		retry.WithMaxDelay(cfg.MaxRetryDelay),
	)

	return &PoolConnector{
		cfg:      cfg,
		executor: retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy),
	}
}

// Connect establishes and pings a connection pool.
// The pool is capped at PoolSize+MaxOverflow connections and keeps PoolSize
// connections warm, mirroring the steady-pool-plus-overflow sizing model.
func (c *PoolConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	poolConfig.MaxConns = c.cfg.maxConns()
	poolConfig.MinConns = c.cfg.PoolSize

	var pool *pgxpool.Pool
	_, err = c.executor.Execute(ctx, func(ctx context.Context) error {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}

		// Verify the pool with an actual round trip so authentication and
		// permission problems surface at Init instead of first use.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pool, nil
}

var _ Connector = (*PoolConnector)(nil)
