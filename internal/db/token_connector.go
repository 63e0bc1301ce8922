package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgsession/internal/retry"
	"github.com/vvka-141/pgsession/pkg/pgsession"
)

// TokenBasedConnector implements the pgsession.Connector interface for cloud
// providers that authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
// The token is acquired from a TokenProvider and used as the PostgreSQL password.
type TokenBasedConnector struct {
	conn          *ConnectionConfig
	pool          pgsession.Config
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
}

// NewTokenBasedConnector creates a connector that uses a TokenProvider for
// authentication. providerName is used in error and warning messages
// (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(conn *ConnectionConfig, pool pgsession.Config, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	return &TokenBasedConnector{
		conn:          conn,
		pool:          pool,
		tokenProvider: tokenProvider,
		retryExecutor: newRetryExecutor(pool),
		providerName:  providerName,
	}
}

// Connect acquires a fresh token and establishes a connection pool. The token
// is requested inside the retry loop so a retried attempt never reuses a
// token that expired while backing off.
func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	_, err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}

		if time.Until(expiresOn) < 5*time.Minute {
			fmt.Printf("Warning: %s token expires in %v\n", c.providerName, time.Until(expiresOn).Round(time.Second))
		}

		connWithToken := *c.conn
		connWithToken.Password = token

		connStr := BuildConnectionString(&connWithToken)

		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig, c.pool)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.conn.Host, c.conn.Port, c.conn.Database)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return wrapConnectionError(err, c.conn.Host, c.conn.Port, c.conn.Database)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pool, nil
}

var _ pgsession.Connector = (*TokenBasedConnector)(nil)
