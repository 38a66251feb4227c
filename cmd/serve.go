package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"airbnb-dashboard/api"
	"airbnb-dashboard/dashboard"
	"airbnb-dashboard/services"
)

// Serve implements the "serve" subcommand.
func Serve(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.String("port", "", "HTTP server port (default $PORT)")
	schedule := fs.String("reload", "", "cron schedule for reloading the dataset (default $RELOAD_SCHEDULE)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: airbnb-dashboard serve [--port 8080] [--reload \"@every 1h\"]\n\nLoad the dataset and serve the interactive dashboard.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, logger := setup()
	if *port != "" {
		cfg.HTTPPort = *port
	}
	if *schedule != "" {
		cfg.ReloadSchedule = *schedule
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)

	logger.Info("=== NYC Airbnb dashboard starting ===")
	logger.Info("Config: data=%s | boroughs=%s | storage=%s | map=%dx%d",
		cfg.DataCSV, cfg.BoroughsGeoJSON, cfg.StorageBackend, cfg.MapWidth, cfg.MapHeight)

	ds, err := loadDataset(ctx, cfg, logger)
	if err != nil {
		fail(logger, "[serve] %v", err)
	}
	if len(ds.Listings) == 0 {
		fail(logger, "[serve] No listings survived cleaning. Exiting.")
	}

	sessions := dashboard.NewSessionStore(ds,
		float64(cfg.MapWidth), float64(cfg.MapHeight),
		time.Duration(cfg.SessionTTLMinutes)*time.Minute, logger)

	reloader := dashboard.NewReloader(sessions, func(ctx context.Context) (*services.Dataset, error) {
		return loadDataset(ctx, cfg, logger)
	}, 5*time.Minute, logger)
	if err := reloader.Start(cfg.ReloadSchedule); err != nil {
		fail(logger, "[serve] %v", err)
	}
	defer reloader.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.NewRouter(sessions, cfg.AllowedOrigins, logger),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fail(logger, "[serve] server error: %v", err)
		}
	}()
	logger.Info("[serve] Listening on :%s with %d listings", cfg.HTTPPort, len(ds.Listings))

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("[serve] shutdown error: %v", err)
	}
	logger.Info("[serve] Server exited")
}
