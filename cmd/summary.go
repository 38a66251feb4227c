package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"airbnb-dashboard/services"
)

// Summary implements the "summary" subcommand.
func Summary(args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	filters := addFilterFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: airbnb-dashboard summary [--borough B] [--neighborhood N] [--room-type R]\n\nPrint a terminal report over the cleaned listings.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, logger := setup()

	ds, err := loadDataset(context.Background(), cfg, logger)
	if err != nil {
		fail(logger, "[summary] %v", err)
	}

	listings := filters.apply(ds.Listings)
	logger.Info("[summary] %d of %d listings match", len(listings), len(ds.Listings))

	insights := services.NewInsightService(logger)
	insights.Print(os.Stdout, insights.Generate(listings))
}
