// Package db resolves connection parameters and builds authenticated
// pgsession connectors: standard credentials, AWS RDS IAM, Google Cloud SQL
// IAM, and Azure Entra ID.
package db

import "time"

// AuthMethod selects how the connector authenticates to PostgreSQL.
type AuthMethod string

const (
	// AuthMethodStandard uses username/password credentials.
	AuthMethodStandard AuthMethod = "standard"

	// AuthMethodAWSIAM uses AWS RDS IAM authentication tokens.
	AuthMethodAWSIAM AuthMethod = "aws-iam"

	// AuthMethodGoogleIAM uses the Google Cloud SQL connector with IAM auth.
	AuthMethodGoogleIAM AuthMethod = "google-iam"

	// AuthMethodAzureEntraID uses Azure Entra ID access tokens.
	AuthMethodAzureEntraID AuthMethod = "azure-entra-id"
)

// ConnectionConfig holds granular connection parameters, resolved from
// connection strings, CLI flags, and environment variables.
type ConnectionConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string

	AppName        string
	ConnectTimeout time.Duration

	AuthMethod AuthMethod

	// Azure Entra ID Service Principal credentials (optional; the default
	// credential chain is used when absent).
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AWS IAM authentication.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name
	// (project:region:instance), required for Google IAM authentication.
	GoogleInstance string

	// AdditionalParams carries unrecognized connection string parameters
	// through to the driver.
	AdditionalParams map[string]string
}
