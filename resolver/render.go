package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pevans/coverfetch/fetcher"
)

// RenderOptions configures the headless browser page source.
type RenderOptions struct {
	// NavigationTimeout bounds navigation, settling, and reading the DOM
	// for a single page. Expiry is reported as a NetworkError.
	NavigationTimeout time.Duration

	// SettleDelay is how long to wait after navigation for client-side
	// rendering before reading the DOM.
	SettleDelay time.Duration

	UserAgent string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = 30 * time.Second
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	if o.UserAgent == "" {
		o.UserAgent = fetcher.DefaultUserAgent
	}
	return o
}

// RenderSource loads pages in headless Chrome so that content injected by
// client-side scripts is present before the heuristics run. One browser is
// shared by all pages; each page gets its own tab.
type RenderSource struct {
	opts          RenderOptions
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
}

// NewRenderSource starts a headless browser. Close must be called to shut it
// down.
func NewRenderSource(ctx context.Context, opts RenderOptions) (*RenderSource, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(opts.UserAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Running with no actions launches the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start headless browser: %w", err)
	}

	return &RenderSource{
		opts:          opts,
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
	}, nil
}

// FetchPage navigates a new tab to pageURL, waits for the settle delay, and
// returns the rendered document.
func (r *RenderSource) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	navCtx, cancel := context.WithTimeout(tabCtx, r.opts.NavigationTimeout)
	defer cancel()

	// The tab hangs off the browser context, so cancel it explicitly when
	// the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(r.opts.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, renderError(pageURL, r.opts.NavigationTimeout, err, navCtx.Err(), ctx.Err())
	}

	return []byte(html), nil
}

// renderError wraps a failed page load in a NetworkError. An expired
// navigation deadline is reported as a timeout; a cancelled caller context is
// reported as the cancellation itself.
func renderError(pageURL string, timeout time.Duration, err, navErr, callerErr error) error {
	if callerErr != nil {
		return &fetcher.NetworkError{URL: pageURL, Err: callerErr}
	}
	if errors.Is(navErr, context.DeadlineExceeded) {
		return &fetcher.NetworkError{
			URL: pageURL,
			Err: fmt.Errorf("navigation timed out after %v: %w", timeout, context.DeadlineExceeded),
		}
	}
	return &fetcher.NetworkError{URL: pageURL, Err: err}
}

// Close shuts down the browser.
func (r *RenderSource) Close() {
	r.cancelBrowser()
	r.cancelAlloc()
}
