// Package fetcher performs the HTTP side of cover preparation: page and image
// GETs with a browser user agent, bounded redirect following, and streaming
// downloads that never leave a partial file behind.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultUserAgent mimics a desktop browser. Some photo hosts reject
	// the Go default agent.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// DefaultMaxRedirects is the number of redirect hops followed before a
	// request fails with RedirectLoopError.
	DefaultMaxRedirects = 10

	acceptImage = "image/*"
	acceptHTML  = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
)

// Client issues GET requests and follows 301/302/307/308 redirects itself so
// the hop count can be bounded and reported.
type Client struct {
	// HTTPClient performs individual requests. Its CheckRedirect is
	// overridden per request; redirects are always followed by Client.
	HTTPClient *http.Client

	UserAgent    string
	MaxRedirects int

	// RequireImageContentType rejects downloads whose Content-Type does not
	// start with "image/".
	RequireImageContentType bool
}

// NewClient creates a client with the default user agent and redirect limit.
// A zero timeout means no per-request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTPClient:              &http.Client{Timeout: timeout},
		UserAgent:               DefaultUserAgent,
		MaxRedirects:            DefaultMaxRedirects,
		RequireImageContentType: true,
	}
}

// Get fetches rawURL and returns the first non-redirect 200 response. The
// caller must close the response body.
func (c *Client) Get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	hc := c.httpClient()
	current := rawURL

	for hops := 0; ; hops++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent())
		if accept != "" {
			req.Header.Set("Accept", accept)
		}

		resp, err := hc.Do(req)
		if err != nil {
			return nil, &NetworkError{URL: current, Err: err}
		}

		if !isRedirect(resp.StatusCode) {
			if resp.StatusCode != http.StatusOK {
				discard(resp)
				return nil, &HTTPStatusError{URL: current, StatusCode: resp.StatusCode}
			}
			return resp, nil
		}

		location := resp.Header.Get("Location")
		discard(resp)
		if location == "" {
			return nil, &HTTPStatusError{URL: current, StatusCode: resp.StatusCode}
		}
		if hops >= c.maxRedirects() {
			return nil, &RedirectLoopError{URL: rawURL, Hops: hops}
		}

		next, err := req.URL.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("invalid redirect location %q: %w", location, err)
		}
		current = next.String()
	}
}

// FetchPage returns the body of an HTML page.
func (c *Client) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	resp, err := c.Get(ctx, pageURL, acceptHTML)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: pageURL, Err: err}
	}
	return body, nil
}

// Download streams the image at rawURL into dest and returns the number of
// bytes written. On any failure after dest was created, dest is removed.
func (c *Client) Download(ctx context.Context, rawURL, dest string) (int64, error) {
	resp, err := c.Get(ctx, rawURL, acceptImage)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if c.RequireImageContentType {
		contentType := resp.Header.Get("Content-Type")
		if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
			return 0, &InvalidContentError{
				URL:    rawURL,
				Reason: fmt.Sprintf("content type %q is not an image", contentType),
			}
		}
	}

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, &FileSystemError{Op: "create", Path: dest, Err: err}
	}

	w := &fileWriter{f: f}
	written, err := io.Copy(w, resp.Body)
	if err != nil {
		f.Close()
		removePartial(dest)
		if w.err != nil {
			return 0, &FileSystemError{Op: "write", Path: dest, Err: w.err}
		}
		return 0, &NetworkError{URL: rawURL, Err: err}
	}

	if err := f.Close(); err != nil {
		removePartial(dest)
		return 0, &FileSystemError{Op: "close", Path: dest, Err: err}
	}

	return written, nil
}

// fileWriter records write-side errors so a failed copy can be attributed to
// the disk rather than the network.
type fileWriter struct {
	f   *os.File
	err error
}

func (w *fileWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}

func (c *Client) httpClient() *http.Client {
	base := c.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	hc := *base
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &hc
}

func (c *Client) userAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

func (c *Client) maxRedirects() int {
	if c.MaxRedirects <= 0 {
		return DefaultMaxRedirects
	}
	return c.MaxRedirects
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// discard drains a small amount of the body so the connection can be reused,
// then closes it.
func discard(resp *http.Response) {
	_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
	resp.Body.Close()
}

// removePartial deletes a partially written file. The caller already holds
// the error that caused the cleanup, so a failed remove is not reported.
func removePartial(path string) {
	_ = os.Remove(path)
}
