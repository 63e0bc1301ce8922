package db

import (
	"context"
	"time"
)

// TokenProvider abstracts cloud token acquisition for database authentication.
// Mock providers can implement it in tests, and additional cloud vendors can
// plug in behind the same interface.
type TokenProvider interface {
	// GetToken acquires an OAuth token for database authentication.
	// The token is used as the password when connecting to cloud-hosted PostgreSQL.
	// Returns the token string and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging.
	// Should NOT include secrets. Example: "AzureServicePrincipal(tenant=xxx, client=yyy)"
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
// Azure AD uses this resource identifier to issue tokens for PostgreSQL access.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"
