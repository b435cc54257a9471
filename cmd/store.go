package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/internal/recordstore"
	"github.com/devexhq/pulse/schema"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeCmd focused on record store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by metric commands. This avoids window parsing
// and team roster loading for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the durable record store",
	Long: `Manage the record store that holds normalized activity records.

Supported backends: Memory (default), SQLite, MySQL, PostgreSQL

Subcommands:
  status  - Show store contents and data version
  migrate - Run database schema migrations

Examples:
  # Check store status
  pulse store status --store-backend sqlite

  # Prepare a fresh PostgreSQL database
  pulse store migrate --store-backend postgresql --store-db-connect "host=... dbname=..."`,
}

// storeStatusCmd shows record store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display record store contents and data version",
	Long: `Show the configured backend and the store's global data version.

The data version increases with every upsert and keys the aggregation
cache, so a growing version confirms ingestion is reaching the store.

Examples:
  # Check status of the local SQLite store
  pulse store status --store-backend sqlite`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		s, err := recordstore.NewStore(cfg, nil)
		if err != nil {
			contract.LogFatal("Failed to open record store", err)
		}
		defer func() { _ = s.Close() }()

		version, err := s.DataVersion(rootCtx, "")
		if err != nil {
			contract.LogFatal("Failed to read data version", err)
		}
		fmt.Printf("Backend:      %s\n", cfg.StoreBackend)
		fmt.Printf("Data version: %d\n", version)
	},
}

// storeMigrateCmd runs database migrations for the record store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the record store.

By default, migrates to the latest version. Use --target-version for
specific versions; 0 rolls back to the initial state.

Examples:
  # Migrate to latest version (default)
  pulse store migrate --store-backend sqlite

  # Rollback everything
  pulse store migrate --store-backend sqlite --target-version 0`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := recordstore.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
