// Package cmd defines the command-line interface for pulse.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(prCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(commitsCmd)
	rootCmd.AddCommand(doraCmd)
	rootCmd.AddCommand(runnersCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("repo", "r", "", "Repository to analyze (e.g., acme/api); empty means all repositories")
	rootCmd.PersistentFlags().String("group-by", string(schema.GroupByRepo), "Grouping dimension: repo or team or author or none")
	rootCmd.PersistentFlags().String("start", "", "Window start in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("end", "", "Window end in ISO8601 or time ago")
	rootCmd.PersistentFlags().Int("staleness-days", schema.DefaultStalenessDays, "Open issues older than this count as stale")
	rootCmd.PersistentFlags().String("deploy-lookahead", "", "Max gap between a merge and its deploy run (e.g., 24h, 2 days)")
	rootCmd.PersistentFlags().String("deploy-keywords", "", "Comma-separated workflow name keywords that mark a deploy")
	rootCmd.PersistentFlags().String("store-backend", string(schema.MemoryBackend), "Record store backend: memory or sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().Int("cache-capacity", schema.DefaultCacheCapacity, "Max cached aggregation entries (0 = unbounded)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", contract.DefaultServeAddr, "Listen address for the HTTP API")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
