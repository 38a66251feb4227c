package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

// LoadFunc produces a fresh dataset.
type LoadFunc func(ctx context.Context) (*services.Dataset, error)

// Reloader periodically reloads the dataset into every session and evicts
// idle sessions.
type Reloader struct {
	store   *SessionStore
	load    LoadFunc
	logger  *utils.Logger
	timeout time.Duration
	cron    *cron.Cron
}

// NewReloader creates a Reloader. Each run is bounded by timeout.
func NewReloader(store *SessionStore, load LoadFunc, timeout time.Duration, logger *utils.Logger) *Reloader {
	return &Reloader{
		store:   store,
		load:    load,
		logger:  logger,
		timeout: timeout,
		cron:    cron.New(),
	}
}

// Start schedules reloads on a standard five-field cron expression and
// session eviction every minute.
func (r *Reloader) Start(schedule string) error {
	if schedule != "" {
		if _, err := r.cron.AddFunc(schedule, r.run); err != nil {
			return fmt.Errorf("reload: schedule %q: %w", schedule, err)
		}
		r.logger.Info("[reload] Dataset reload scheduled: %s", schedule)
	}
	if _, err := r.cron.AddFunc("@every 1m", func() { r.store.Evict() }); err != nil {
		return fmt.Errorf("reload: schedule eviction: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (r *Reloader) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Reloader) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.Reload(ctx); err != nil {
		r.logger.Error("[reload] %v", err)
	}
}

// Reload loads a new dataset and swaps it into every session. On failure the
// current dataset stays in place.
func (r *Reloader) Reload(ctx context.Context) error {
	start := time.Now()
	ds, err := r.load(ctx)
	if err != nil {
		return fmt.Errorf("reload: load dataset: %w", err)
	}

	r.store.SwapDataset(ds)
	evicted := r.store.Evict()
	r.logger.Info("[reload] Reloaded %d listings in %v (%d sessions, %d evicted)",
		len(ds.Listings), time.Since(start).Round(time.Millisecond), r.store.Len(), evicted)
	return nil
}
