package db

import (
	"fmt"
	"os"
	"strconv"

	"github.com/vvka-141/pgsession/internal/config"
)

// ConnFlags represents connection parameters from CLI flags.
// These follow PostgreSQL standard flag conventions (--host, -p, -U, -d).
//
// Note: Password is NOT included as a CLI flag for security reasons.
// Use the PGPASSWORD environment variable or a connection string instead.
type ConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty returns true if no connection-related granular flags were provided.
// The database flag is excluded: it can override the database from a
// connection string.
func (g *ConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// AzureFlags represents Azure Entra ID CLI flags.
// These override the corresponding AZURE_* environment variables.
// The client secret only comes from AZURE_CLIENT_SECRET for security.
type AzureFlags struct {
	TenantID string // Overrides AZURE_TENANT_ID
	ClientID string // Overrides AZURE_CLIENT_ID
}

// EnvVars represents PostgreSQL standard environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string // PostgreSQL server host
	PGPORT       string // PostgreSQL server port
	PGUSER       string // PostgreSQL username
	PGPASSWORD   string // PostgreSQL password (discouraged, use .pgpass instead)
	PGDATABASE   string // Default database name
	PGSSLMODE    string // SSL mode
	DATABASE_URL string // Full connection string (Heroku/Rails convention)

	// Azure Entra ID environment variables (Azure SDK standard names)
	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string

	// AWS_REGION selects the region for RDS IAM token signing.
	AWS_REGION string
}

// LoadFromEnvironment loads PostgreSQL and cloud provider environment variables.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
	}
}

// ResolveConnectionParams resolves connection parameters using
// PostgreSQL-standard precedence:
//
//  1. Connection string flag (--connection) - parsed and used directly
//  2. Granular flags (--host, -p, -U, -d) - merged over environment
//  3. Environment variables (PGHOST, PGPORT, ...)
//  4. DATABASE_URL environment variable - fallback if no granular params
//  5. Project config file (pgsession.yaml)
//  6. Defaults (localhost:5432, prefer SSL)
//
// Cloud authentication: Azure flags or AZURE_* environment variables switch
// the auth method to Azure Entra ID; an AWS region with aws-iam configured
// in the project file selects AWS IAM; a Google instance selects Google IAM.
func ResolveConnectionParams(
	connStringFlag string,
	flags *ConnFlags,
	azureFlags *AzureFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*ConnectionConfig, error) {
	if flags == nil {
		flags = &ConnFlags{}
	}
	if azureFlags == nil {
		azureFlags = &AzureFlags{}
	}
	if envVars == nil {
		envVars = &EnvVars{}
	}

	// Connection string XOR granular flags: ambiguity is an error.
	if connStringFlag != "" && !flags.IsEmpty() {
		return nil, fmt.Errorf(
			"cannot specify both --connection and granular flags (--host, -p, -U)\n" +
				"Choose one approach:\n" +
				"  1. Connection string: --connection \"postgresql://user@localhost:5432/postgres\"\n" +
				"  2. Granular flags: --host localhost -p 5432 -U myuser -d mydb\n" +
				"  3. Environment variables: export PGHOST=localhost PGPORT=5432 PGUSER=myuser",
		)
	}

	var cfg *ConnectionConfig
	var err error

	switch {
	case connStringFlag != "":
		cfg, err = resolveFromConnectionString(connStringFlag, envVars)
	case flags.IsEmpty() && envVars.DATABASE_URL != "":
		cfg, err = resolveFromConnectionString(envVars.DATABASE_URL, envVars)
	default:
		cfg, err = resolveFromGranularParams(flags, envVars, projectConfig)
	}
	if err != nil {
		return nil, err
	}

	// The -d flag overrides the database from any source.
	if flags.Database != "" {
		cfg.Database = flags.Database
	}

	applyCloudAuth(cfg, azureFlags, envVars, projectConfig)

	return cfg, nil
}

// resolveFromConnectionString parses a connection string, applying
// environment fallbacks for parameters it does not specify (libpq behavior).
func resolveFromConnectionString(connStr string, envVars *EnvVars) (*ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w", err)
	}

	if cfg.SSLMode == "" && envVars.PGSSLMODE != "" {
		cfg.SSLMode = envVars.PGSSLMODE
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "prefer"
	}

	return cfg, nil
}

// resolveFromGranularParams builds a ConnectionConfig from flags,
// environment variables, and the project config file, in that precedence.
func resolveFromGranularParams(
	flags *ConnFlags,
	envVars *EnvVars,
	projectConfig *config.ProjectConfig,
) (*ConnectionConfig, error) {
	cfg := &ConnectionConfig{
		AuthMethod:       AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	cfg.Host = firstNonEmpty(flags.Host, envVars.PGHOST, pc.Host, "localhost")

	cfg.Port = flags.Port
	if cfg.Port == 0 && envVars.PGPORT != "" {
		port, err := strconv.Atoi(envVars.PGPORT)
		if err != nil {
			return nil, fmt.Errorf("invalid PGPORT %q: %w", envVars.PGPORT, err)
		}
		cfg.Port = port
	}
	if cfg.Port == 0 {
		cfg.Port = pc.Port
	}
	if cfg.Port == 0 {
		cfg.Port = 5432
	}

	cfg.Username = firstNonEmpty(flags.Username, envVars.PGUSER, pc.Username)
	cfg.Password = envVars.PGPASSWORD
	cfg.Database = firstNonEmpty(flags.Database, envVars.PGDATABASE, pc.Database, "postgres")
	cfg.SSLMode = firstNonEmpty(flags.SSLMode, envVars.PGSSLMODE, pc.SSLMode, "prefer")

	return cfg, nil
}

// applyCloudAuth switches the auth method when cloud credentials are
// configured. CLI flags take precedence over environment variables, which
// take precedence over the project config file.
func applyCloudAuth(cfg *ConnectionConfig, flags *AzureFlags, env *EnvVars, projectConfig *config.ProjectConfig) {
	var pc config.ConnectionConfig
	if projectConfig != nil {
		pc = projectConfig.Connection
	}

	tenantID := firstNonEmpty(flags.TenantID, env.AZURE_TENANT_ID, pc.AzureTenantID)
	clientID := firstNonEmpty(flags.ClientID, env.AZURE_CLIENT_ID, pc.AzureClientID)

	if tenantID != "" || clientID != "" {
		cfg.AuthMethod = AuthMethodAzureEntraID
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
		return
	}

	if pc.GoogleInstance != "" {
		cfg.AuthMethod = AuthMethodGoogleIAM
		cfg.GoogleInstance = pc.GoogleInstance
		return
	}

	if AuthMethod(pc.AuthMethod) == AuthMethodAWSIAM {
		cfg.AuthMethod = AuthMethodAWSIAM
		cfg.AWSRegion = firstNonEmpty(env.AWS_REGION, pc.AWSRegion)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
