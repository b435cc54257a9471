package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devexhq/pulse/internal/contract"
	"github.com/devexhq/pulse/internal/ingest"
)

// ingestCmd loads raw activity exports into the record store.
var ingestCmd = &cobra.Command{
	Use:   "ingest <export-file>...",
	Short: "Load raw activity exports into the record store.",
	Long: `Normalize and store raw engineering activity exports.

Each export is a JSON array (or an object with a top-level "records"
array) of pull request, issue, commit and workflow run events. Records
missing an id or created_at are dropped and logged; everything else is
upserted by id, so replaying the same export is safe.

With the default memory backend ingested data only lives for the
process; pair this command with --store-backend sqlite/mysql/postgresql
for durable storage, or use 'pulse serve' and POST records instead.

Examples:
  # Load one export into a local SQLite store
  pulse ingest march.json --store-backend sqlite

  # Replay several exports (idempotent)
  pulse ingest jan.json feb.json mar.json --store-backend sqlite`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		for _, path := range args {
			summary, err := ingest.RunFile(rootCtx, store, path)
			if err != nil {
				contract.LogFatal("Cannot ingest export", err)
			}
			fmt.Printf("Ingested %d/%d records from %s (%d dropped, run %s, took %v)\n",
				summary.Ingested, summary.Total, path, summary.Dropped, summary.RunID, summary.Duration)
		}
	},
}
