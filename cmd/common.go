// Package cmd implements the dashboard's subcommands.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"airbnb-dashboard/config"
	"airbnb-dashboard/dashboard"
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

// setup loads and validates the configuration and builds the logger. It exits
// on invalid configuration.
func setup() (*config.Config, *utils.Logger) {
	logger := utils.NewLogger()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("[config] %v", err)
		os.Exit(1)
	}
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))
	return cfg, logger
}

func fail(logger *utils.Logger, format string, args ...any) {
	logger.Error(format, args...)
	os.Exit(1)
}

func newLoader(cfg *config.Config, logger *utils.Logger) *services.Loader {
	return services.NewLoader(logger,
		cfg.MaxRetries,
		time.Duration(cfg.RetryBaseMs)*time.Millisecond,
		time.Duration(cfg.FetchTimeoutSec)*time.Second,
	)
}

func sources(cfg *config.Config) services.Sources {
	return services.Sources{
		ListingsCSV:     cfg.DataCSV,
		BoroughsGeoJSON: cfg.BoroughsGeoJSON,
	}
}

// openStore opens the configured listing store; the memory backend has none.
func openStore(cfg *config.Config) (storage.ListingStore, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return storage.NewPostgresStore(cfg.DSN())
	case config.BackendSQLite:
		return storage.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, nil
	}
}

// loadDataset loads and cleans the sources. With a database backend the
// cleaned listings are persisted and the dataset is built from what the store
// hands back.
func loadDataset(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*services.Dataset, error) {
	ds, err := newLoader(cfg, logger).Load(ctx, sources(cfg))
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	if cfg.StorageBackend == config.BackendMemory {
		return ds, nil
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StorageBackend, err)
	}
	defer store.Close()

	if err := store.Write(ds.Listings); err != nil {
		return nil, fmt.Errorf("write %s store: %w", cfg.StorageBackend, err)
	}
	listings, err := store.FetchAll()
	if err != nil {
		return nil, fmt.Errorf("fetch from %s store: %w", cfg.StorageBackend, err)
	}
	logger.Info("[store] %d listings persisted to %s", len(listings), cfg.StorageBackend)
	return services.NewDataset(listings, ds.Boundaries), nil
}

// filterFlags registers the optional selection flags shared by summary and
// export.
type filterFlags struct {
	borough      *string
	neighborhood *string
	roomType     *string
}

func addFilterFlags(fs *flag.FlagSet) filterFlags {
	return filterFlags{
		borough:      fs.String("borough", "", "only listings in this borough"),
		neighborhood: fs.String("neighborhood", "", "only listings in this neighborhood"),
		roomType:     fs.String("room-type", "", "only listings of this room type"),
	}
}

func (f filterFlags) selection() dashboard.Selection {
	return dashboard.Selection{
		Borough:      services.NormaliseBorough(*f.borough),
		Neighborhood: *f.neighborhood,
		RoomType:     *f.roomType,
	}
}

func (f filterFlags) apply(listings []*models.Listing) []*models.Listing {
	return services.Filter(listings, dashboard.Predicate(f.selection(), dashboard.AllDimensions...))
}
