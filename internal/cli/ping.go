package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgsession/internal/config"
	"github.com/vvka-141/pgsession/internal/db"
	"github.com/vvka-141/pgsession/internal/logging"
	"github.com/vvka-141/pgsession/pkg/pgsession"
)

var pingFlags struct {
	connection    string
	host          string
	port          int
	username      string
	database      string
	sslMode       string
	azure         bool
	azureTenantID string
	azureClientID string
	timeout       time.Duration
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Verify database connectivity",
	Long: `Initialize the session manager, run a health check, and report the result.

Connection parameters resolve with PostgreSQL-standard precedence:
connection string flag, granular flags, environment variables
(PGHOST, PGPORT, DATABASE_URL, ...), then pgsession.yaml.`,
	RunE: runPing,
}

func init() {
	pingCmd.Flags().StringVar(&pingFlags.connection, "connection", "",
		"PostgreSQL connection string (URI or ADO.NET format)")
	pingCmd.Flags().StringVar(&pingFlags.host, "host", "",
		"Database server host")
	pingCmd.Flags().IntVarP(&pingFlags.port, "port", "p", 0,
		"Database server port")
	pingCmd.Flags().StringVarP(&pingFlags.username, "username", "U", "",
		"Database user name")
	pingCmd.Flags().StringVarP(&pingFlags.database, "database", "d", "",
		"Database name (overrides connection string database)")
	pingCmd.Flags().StringVar(&pingFlags.sslMode, "sslmode", "",
		"SSL mode (disable, allow, prefer, require, verify-ca, verify-full)")
	pingCmd.Flags().BoolVar(&pingFlags.azure, "azure", false,
		"Use Azure Entra ID authentication")
	pingCmd.Flags().StringVar(&pingFlags.azureTenantID, "azure-tenant-id", "",
		"Azure tenant ID (overrides AZURE_TENANT_ID)")
	pingCmd.Flags().StringVar(&pingFlags.azureClientID, "azure-client-id", "",
		"Azure client ID (overrides AZURE_CLIENT_ID)")
	pingCmd.Flags().DurationVar(&pingFlags.timeout, "timeout", 30*time.Second,
		"Overall timeout for the health check")

	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	log := logging.NewConsoleLogger(verbose)

	_ = godotenv.Load()

	projectCfg, err := config.Load(".")
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return fmt.Errorf("failed to load %s: %w", config.ConfigFileName, err)
		}
		projectCfg = &config.ProjectConfig{}
	}

	connFlags := &db.ConnFlags{
		Host:     pingFlags.host,
		Port:     pingFlags.port,
		Username: pingFlags.username,
		Database: pingFlags.database,
		SSLMode:  pingFlags.sslMode,
	}
	azureFlags := &db.AzureFlags{
		TenantID: pingFlags.azureTenantID,
		ClientID: pingFlags.azureClientID,
	}
	if pingFlags.azure && azureFlags.TenantID == "" && azureFlags.ClientID == "" {
		// The flag alone switches the auth method; credentials come from
		// AZURE_* environment variables or the default credential chain.
		azureFlags.TenantID = os.Getenv("AZURE_TENANT_ID")
		azureFlags.ClientID = os.Getenv("AZURE_CLIENT_ID")
	}

	connCfg, err := db.ResolveConnectionParams(
		pingFlags.connection,
		connFlags,
		azureFlags,
		db.LoadFromEnvironment(),
		projectCfg,
	)
	if err != nil {
		return err
	}

	sessionCfg, err := projectCfg.SessionConfig(db.BuildConnectionString(connCfg))
	if err != nil {
		return err
	}

	connector, err := db.NewConnector(connCfg, sessionCfg)
	if err != nil {
		return err
	}

	manager := pgsession.New(sessionCfg,
		pgsession.WithLogger(log),
		pgsession.WithConnector(connector),
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), pingFlags.timeout)
	defer cancel()

	if err := manager.Init(ctx); err != nil {
		return err
	}
	defer manager.Close()

	ok, err := manager.HealthCheck(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("health check failed")
	}

	fmt.Printf("OK: %s:%d/%s\n", connCfg.Host, connCfg.Port, connCfg.Database)
	return nil
}
