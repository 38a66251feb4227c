package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"airbnb-dashboard/storage"
)

// Export implements the "export" subcommand.
func Export(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("out", "", "output CSV path (default $EXPORT_PATH)")
	filters := addFilterFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: airbnb-dashboard export [--out file.csv] [--borough B] [--neighborhood N] [--room-type R]\n\nWrite the cleaned listings, optionally filtered, to CSV.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, logger := setup()
	if *out == "" {
		*out = cfg.ExportPath
	}

	ds, err := loadDataset(context.Background(), cfg, logger)
	if err != nil {
		fail(logger, "[export] %v", err)
	}
	listings := filters.apply(ds.Listings)

	w, err := storage.NewCSVFileWriter(*out)
	if err != nil {
		fail(logger, "[export] %v", err)
	}
	if err := w.Write(listings); err != nil {
		w.Close()
		fail(logger, "[export] %v", err)
	}
	if err := w.Close(); err != nil {
		fail(logger, "[export] %v", err)
	}
	logger.Info("[export] Wrote %d listings to %s", len(listings), *out)
}
