package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/pgsession/internal/retry"
	"github.com/vvka-141/pgsession/pkg/pgsession"
)

func configurePool(poolConfig *pgxpool.Config, cfg pgsession.Config) {
	maxConns := cfg.PoolSize + cfg.MaxOverflow
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	if cfg.PoolSize > 0 {
		poolConfig.MinConns = cfg.PoolSize
	}
}

func newRetryExecutor(cfg pgsession.Config) *retry.Executor {
	strategy := retry.NewExponentialBackoff(cfg.MaxRetries,
		retry.WithInitialDelay(cfg.RetryBaseDelay),
		retry.WithMaxDelay(cfg.MaxRetryDelay),
	)
	return retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy)
}

// StandardConnector implements the pgsession.Connector interface for
// standard username/password authentication with automatic retry on
// transient failures.
type StandardConnector struct {
	conn          *ConnectionConfig
	pool          pgsession.Config
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a new StandardConnector. Pool sizing and the
// retry budget come from the pgsession configuration.
func NewStandardConnector(conn *ConnectionConfig, pool pgsession.Config) *StandardConnector {
	return &StandardConnector{
		conn:          conn,
		pool:          pool,
		retryExecutor: newRetryExecutor(pool),
	}
}

// Connect establishes a connection pool using standard authentication with
// automatic retry.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.conn)

	_, err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig, c.pool)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.conn.Host, c.conn.Port, c.conn.Database)
		}

		// Test the connection
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

// NewConnector is a factory function that creates the appropriate
// pgsession.Connector based on the ConnectionConfig's AuthMethod.
func NewConnector(conn *ConnectionConfig, pool pgsession.Config) (pgsession.Connector, error) {
	switch conn.AuthMethod {
	case AuthMethodStandard, "":
		return NewStandardConnector(conn, pool), nil
	case AuthMethodAWSIAM:
		return newAWSConnector(conn, pool)
	case AuthMethodGoogleIAM:
		return newGoogleConnector(conn, pool)
	case AuthMethodAzureEntraID:
		return newAzureConnector(conn, pool)
	default:
		return nil, fmt.Errorf("unsupported auth method %q", conn.AuthMethod)
	}
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or ~/.pgpass)
  - Wrong username
  - User does not have access to the database

Original error: %w`, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets

Original error: %w`, addr, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - Connection pool exhausted on server
  - max_connections limit reached in postgresql.conf

Original error: %w`, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(conn *ConnectionConfig, pool pgsession.Config) (pgsession.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", conn.Host, conn.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, conn.AWSRegion, conn.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(conn, pool, tokenProvider, "AWS IAM"), nil
}

// newGoogleConnector creates a GoogleCloudSQLConnector for Google Cloud SQL
// IAM authentication.
func newGoogleConnector(conn *ConnectionConfig, pool pgsession.Config) (pgsession.Connector, error) {
	if conn.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires an instance connection name (project:region:instance)")
	}
	if conn.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a username")
	}

	return NewGoogleCloudSQLConnector(conn, pool, conn.GoogleInstance), nil
}

// newAzureConnector creates a token-based connector with the Azure Entra ID
// token provider. Explicit Service Principal credentials win; otherwise the
// DefaultAzureCredential chain is used.
func newAzureConnector(conn *ConnectionConfig, pool pgsession.Config) (pgsession.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if conn.AzureTenantID != "" && conn.AzureClientID != "" && conn.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			conn.AzureTenantID,
			conn.AzureClientID,
			conn.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(conn, pool, tokenProvider, "Azure"), nil
}

var _ pgsession.Connector = (*StandardConnector)(nil)
