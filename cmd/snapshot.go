package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"airbnb-dashboard/browser"
)

// Snapshot implements the "snapshot" subcommand.
func Snapshot(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	pageURL := fs.String("url", "", "dashboard URL (default http://localhost:$PORT/)")
	out := fs.String("out", "snapshot.png", "output PNG path")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: airbnb-dashboard snapshot [--url http://localhost:8080/] [--out snapshot.png]\n\nCapture a screenshot of a running dashboard with headless Chrome.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, logger := setup()
	if *pageURL == "" {
		*pageURL = "http://localhost:" + cfg.HTTPPort + "/"
	}

	snap, err := browser.New(cfg.ChromeBin, cfg.MaxRetries, logger).Capture(context.Background(), *pageURL)
	if err != nil {
		fail(logger, "[snapshot] %v", err)
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fail(logger, "[snapshot] %v", err)
		}
	}
	if err := os.WriteFile(*out, snap.PNG, 0o644); err != nil {
		fail(logger, "[snapshot] %v", err)
	}
	logger.Info("[snapshot] Saved %s", *out)
}
