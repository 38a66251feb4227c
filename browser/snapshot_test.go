package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"airbnb-dashboard/utils"
)

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	if got := FindChromeBinary("/custom/chrome"); got != "/custom/chrome" {
		t.Errorf("FindChromeBinary(configured) = %q; want /custom/chrome", got)
	}
}

const testPage = `<!DOCTYPE html><html><body>
<img id="scatterChart" width="10" height="10" src="data:image/gif;base64,R0lGODlhAQABAAAAACw=">
<span id="count">42</span>
</body></html>`

func TestCapture(t *testing.T) {
	if FindChromeBinary("") == "" {
		t.Skip("no Chrome or Chromium installed")
	}
	if testing.Short() {
		t.Skip("launches a browser")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snap, err := New("", 1, utils.NewDiscardLogger()).Capture(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if len(snap.PNG) == 0 {
		t.Error("empty screenshot")
	}
	if snap.ListingsCount != "42" {
		t.Errorf("listings count = %q; want 42", snap.ListingsCount)
	}
}
