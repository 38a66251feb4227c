package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"airbnb-dashboard/geo"
	"airbnb-dashboard/models"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

// locateWorkers bounds the goroutines used for point-in-polygon lookups.
const locateWorkers = 4

// Dataset is the loaded, cleaned listings plus the borough boundaries. It is
// never mutated after NewDataset returns; a reload builds a new Dataset.
type Dataset struct {
	Listings   []*models.Listing
	Boundaries *geo.BoundarySet
	LoadedAt   time.Time

	// polygonBorough[i] is the boundary containing Listings[i], or "".
	polygonBorough []string
	index          map[*models.Listing]int
}

// NewDataset indexes listings against the boundaries. Callers that already
// hold cleaned listings (from a store) use this directly.
func NewDataset(listings []*models.Listing, boundaries *geo.BoundarySet) *Dataset {
	ds := &Dataset{
		Listings:       listings,
		Boundaries:     boundaries,
		LoadedAt:       time.Now(),
		polygonBorough: make([]string, len(listings)),
		index:          make(map[*models.Listing]int, len(listings)),
	}
	for i, l := range listings {
		ds.index[l] = i
	}
	if boundaries == nil || len(listings) == 0 {
		return ds
	}

	pool := utils.NewWorkerPool(locateWorkers)
	chunk := (len(listings) + locateWorkers - 1) / locateWorkers
	for start := 0; start < len(listings); start += chunk {
		lo, hi := start, min(start+chunk, len(listings))
		pool.Submit(func() error {
			for i := lo; i < hi; i++ {
				ds.polygonBorough[i] = boundaries.Locate(listings[i].Longitude, listings[i].Latitude)
			}
			return nil
		})
	}
	_ = pool.Wait()
	return ds
}

// PolygonBorough returns the name of the boundary polygon containing l, or ""
// when l lies outside every polygon or does not belong to this dataset.
func (d *Dataset) PolygonBorough(l *models.Listing) string {
	i, ok := d.index[l]
	if !ok {
		return ""
	}
	return d.polygonBorough[i]
}

// Sources names where the listings CSV and the boroughs GeoJSON come from.
// Each may be a file path or an http(s) URL.
type Sources struct {
	ListingsCSV     string
	BoroughsGeoJSON string
}

// Loader fetches and cleans the dashboard's inputs.
type Loader struct {
	logger  *utils.Logger
	retry   *utils.RetryConfig
	client  *http.Client
	cleaner *Cleaner
}

// NewLoader creates a Loader. URL sources are retried maxRetries times.
func NewLoader(logger *utils.Logger, maxRetries int, baseDelay, timeout time.Duration) *Loader {
	return &Loader{
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   baseDelay,
			Logger:      logger,
		},
		client:  &http.Client{Timeout: timeout},
		cleaner: NewCleaner(logger),
	}
}

// LoadRaw fetches both sources concurrently and parses them without
// cleaning the listings.
func (ld *Loader) LoadRaw(ctx context.Context, src Sources) ([]*models.RawListing, *geo.BoundarySet, error) {
	var (
		raw        []*models.RawListing
		boundaries *geo.BoundarySet
	)

	pool := utils.NewWorkerPool(2)
	pool.Submit(func() error {
		data, err := ld.fetch(ctx, src.ListingsCSV)
		if err != nil {
			return fmt.Errorf("listings: %w", err)
		}
		raw, err = storage.ReadRawListings(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("listings: %w", err)
		}
		return nil
	})
	pool.Submit(func() error {
		data, err := ld.fetch(ctx, src.BoroughsGeoJSON)
		if err != nil {
			return fmt.Errorf("boroughs: %w", err)
		}
		boundaries, err = geo.ParseBoundaries(data)
		return err
	})
	if err := pool.Wait(); err != nil {
		return nil, nil, err
	}

	ld.logger.Info("[loader] Read %d raw listings and %d borough boundaries",
		len(raw), len(boundaries.Boroughs))
	return raw, boundaries, nil
}

// Load fetches, cleans and indexes the dataset.
func (ld *Loader) Load(ctx context.Context, src Sources) (*Dataset, error) {
	raw, boundaries, err := ld.LoadRaw(ctx, src)
	if err != nil {
		return nil, err
	}
	return NewDataset(ld.cleaner.Clean(raw), boundaries), nil
}

func (ld *Loader) fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		return data, nil
	}

	var data []byte
	err := ld.retry.Do(ctx, "fetch "+source, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		resp, err := ld.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch url %s: %w", source, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, source)
		}
		data, err = io.ReadAll(resp.Body)
		return err
	})
	return data, err
}
