package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"airbnb-dashboard/config"
)

// Import implements the "import" subcommand.
func Import(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	backend := fs.String("backend", "", "postgres or sqlite (default $STORAGE_BACKEND)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: airbnb-dashboard import [--backend sqlite]\n\nClean the source CSV and replace the listings table with the result.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, logger := setup()
	if *backend != "" {
		cfg.StorageBackend = strings.ToLower(*backend)
		if err := cfg.Validate(); err != nil {
			fail(logger, "[import] %v", err)
		}
	}
	if cfg.StorageBackend == config.BackendMemory {
		fail(logger, "[import] The memory backend has nothing to import into; use --backend postgres or sqlite")
	}

	ds, err := loadDataset(context.Background(), cfg, logger)
	if err != nil {
		fail(logger, "[import] %v", err)
	}
	logger.Info("[import] Stored %d clean listings (%s, table: listings)", len(ds.Listings), cfg.StorageBackend)
}
