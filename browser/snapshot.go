// Package browser drives a headless Chrome to capture the served dashboard.
package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"airbnb-dashboard/utils"
)

const (
	viewportWidth  = 1400
	viewportHeight = 900
	pageTimeout    = 60 * time.Second
	// settleDelay lets the chart images load after the page script has run.
	settleDelay = 3 * time.Second
)

// Snapshotter captures full-page screenshots of the dashboard.
type Snapshotter struct {
	chromeBin string
	logger    *utils.Logger
	retry     *utils.RetryConfig
}

// New creates a Snapshotter. chromeBin may be empty to search the usual
// install locations.
func New(chromeBin string, maxRetries int, logger *utils.Logger) *Snapshotter {
	return &Snapshotter{
		chromeBin: FindChromeBinary(chromeBin),
		logger:    logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// Snapshot is one captured page.
type Snapshot struct {
	PNG           []byte
	ListingsCount string
}

// Capture loads pageURL, waits for the dashboard to render and returns a
// full-page PNG plus the listings count shown on the page.
func (s *Snapshotter) Capture(ctx context.Context, pageURL string) (*Snapshot, error) {
	s.logger.Info("[browser] Using browser binary: %s", s.chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	if s.chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(s.chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	snap := &Snapshot{}
	err := s.retry.Do(ctx, "snapshot "+pageURL, func(context.Context) error {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, pageTimeout)
		defer cancelTimeout()

		var png []byte
		var count string
		err := chromedp.Run(tabCtx,
			chromedp.EmulateViewport(viewportWidth, viewportHeight),
			chromedp.Navigate(pageURL),
			chromedp.WaitVisible("#scatterChart", chromedp.ByQuery),
			chromedp.Sleep(settleDelay),
			chromedp.Text("#count", &count, chromedp.ByQuery),
			chromedp.FullScreenshot(&png, 90),
		)
		if err != nil {
			return fmt.Errorf("chromedp run: %w", err)
		}
		snap.PNG = png
		snap.ListingsCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("[browser] Captured %s (%d bytes, %s listings shown)", pageURL, len(snap.PNG), snap.ListingsCount)
	return snap, nil
}

// FindChromeBinary returns configured when set, otherwise the first Chrome or
// Chromium found on PATH or in the usual install locations. An empty result
// lets chromedp fall back to its own search.
func FindChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
