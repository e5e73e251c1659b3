// Package resolver finds a direct image URL on a photo page by running an
// ordered list of extraction heuristics over the parsed HTML.
package resolver

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/coverfetch/scraper"
)

// NoMatchError is returned when no heuristic located an image on the page.
// It is a reportable outcome rather than a failure of the page fetch.
type NoMatchError struct {
	PageURL string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no image URL found on %s", e.PageURL)
}

// PageSource returns the HTML of a page. fetcher.Client implements it over
// plain HTTP; RenderSource implements it with a headless browser.
type PageSource interface {
	FetchPage(ctx context.Context, pageURL string) ([]byte, error)
}

// Page is a fetched photo page, parsed once and shared by all heuristics.
type Page struct {
	URL string
	Doc *goquery.Document
	Raw string
}

// ParsePage parses HTML fetched from pageURL.
func ParsePage(pageURL string, html []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Page{
		URL: pageURL,
		Doc: doc,
		Raw: string(html),
	}, nil
}

// absolute resolves ref against the page URL. Values that cannot be parsed
// are returned as-is.
func (p *Page) absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	base, err := url.Parse(p.URL)
	if err != nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// Match is a resolved image URL and the heuristic that produced it.
type Match struct {
	URL       string
	Heuristic string
}

// Resolver turns a page URL or slug into a candidate image URL.
type Resolver struct {
	source     PageSource
	config     *scraper.Config
	heuristics []Heuristic
}

// New creates a resolver using the default heuristic chain for cfg.
func New(source PageSource, cfg *scraper.Config) *Resolver {
	if cfg == nil {
		cfg = scraper.NewConfig()
	}
	return &Resolver{
		source:     source,
		config:     cfg,
		heuristics: DefaultHeuristics(cfg),
	}
}

// PageURL returns ref unchanged when it is already a URL, otherwise joins the
// slug onto the configured page base URL.
func (r *Resolver) PageURL(ref string) string {
	return PageURL(r.config.PageBaseURL, ref)
}

// PageURL joins a slug onto base. Full URLs are returned unchanged.
func PageURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "://") {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.Trim(ref, "/")
}

// Resolve fetches the page for ref and returns the first heuristic match.
func (r *Resolver) Resolve(ctx context.Context, ref string) (Match, error) {
	pageURL := r.PageURL(ref)

	html, err := r.source.FetchPage(ctx, pageURL)
	if err != nil {
		return Match{}, fmt.Errorf("failed to fetch page: %w", err)
	}

	page, err := ParsePage(pageURL, html)
	if err != nil {
		return Match{}, err
	}

	match, ok := FirstMatch(page, r.heuristics)
	if !ok {
		return Match{}, &NoMatchError{PageURL: pageURL}
	}
	return match, nil
}

// Upgrade rewrites a candidate URL to the configured high-resolution target.
func (r *Resolver) Upgrade(candidate string) string {
	return UpgradeResolution(candidate, r.config.Upgrade)
}

// FirstMatch evaluates heuristics in order and stops at the first non-empty
// result.
func FirstMatch(page *Page, heuristics []Heuristic) (Match, bool) {
	for _, h := range heuristics {
		if found := h.Find(page); found != "" {
			return Match{URL: found, Heuristic: h.Name}, true
		}
	}
	return Match{}, false
}
