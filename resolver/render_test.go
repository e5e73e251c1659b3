package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"testing"
	"time"

	"github.com/pevans/coverfetch/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderOptions_Defaults verifies zero values are filled in
func TestRenderOptions_Defaults(t *testing.T) {
	opts := RenderOptions{SettleDelay: -time.Second}.withDefaults()

	assert.Equal(t, 30*time.Second, opts.NavigationTimeout)
	assert.Equal(t, time.Duration(0), opts.SettleDelay)
	assert.Equal(t, fetcher.DefaultUserAgent, opts.UserAgent)
}

// TestRenderOptions_KeepsExplicitValues verifies configured values survive
func TestRenderOptions_KeepsExplicitValues(t *testing.T) {
	opts := RenderOptions{
		NavigationTimeout: 5 * time.Second,
		SettleDelay:       500 * time.Millisecond,
		UserAgent:         "coverfetch-test",
	}.withDefaults()

	assert.Equal(t, 5*time.Second, opts.NavigationTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.SettleDelay)
	assert.Equal(t, "coverfetch-test", opts.UserAgent)
}

// TestRenderError_Classification verifies failed page loads map to a
// NetworkError with the right cause
func TestRenderError_Classification(t *testing.T) {
	const url = "https://unsplash.com/photos/slow"
	browserErr := errors.New("net::ERR_CONNECTION_REFUSED")

	tests := []struct {
		name      string
		navErr    error
		callerErr error
		wantIs    error
		wantText  string
	}{
		{
			name:     "navigation timeout",
			navErr:   context.DeadlineExceeded,
			wantIs:   context.DeadlineExceeded,
			wantText: "navigation timed out after 2s",
		},
		{
			name:      "caller cancelled",
			navErr:    context.Canceled,
			callerErr: context.Canceled,
			wantIs:    context.Canceled,
		},
		{
			name:     "browser failure",
			wantIs:   browserErr,
			wantText: "ERR_CONNECTION_REFUSED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := renderError(url, 2*time.Second, browserErr, tt.navErr, tt.callerErr)

			var netErr *fetcher.NetworkError
			require.ErrorAs(t, err, &netErr)
			assert.Equal(t, url, netErr.URL)
			assert.ErrorIs(t, err, tt.wantIs)
			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}
}

// TestRenderSource_NavigationTimeout verifies a page that never finishes
// loading fails with a NetworkError once the navigation timeout expires
func TestRenderSource_NavigationTimeout(t *testing.T) {
	if !chromeAvailable() {
		t.Skip("no Chrome or Chromium binary found")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))
	defer server.Close()

	ctx := context.Background()
	source, err := NewRenderSource(ctx, RenderOptions{NavigationTimeout: 500 * time.Millisecond})
	require.NoError(t, err)
	defer source.Close()

	_, err = source.FetchPage(ctx, server.URL)

	var netErr *fetcher.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, server.URL, netErr.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func chromeAvailable() bool {
	for _, name := range []string{"headless-shell", "chromium", "chromium-browser", "google-chrome", "google-chrome-stable"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
