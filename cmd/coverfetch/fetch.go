package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pevans/coverfetch/config"
	"github.com/pevans/coverfetch/covers"
	"github.com/pevans/coverfetch/fetcher"
	"github.com/pevans/coverfetch/resolver"
)

func handleFetch(ctx context.Context, settings *config.Settings, args []string) int {
	// Parse flags for fetch command
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Log every attempt to stderr")
	outputRoot := fs.String("output-root", settings.OutputRoot, "Directory to write covers into")
	manifestPath := fs.String("manifest", settings.ManifestPath, "YAML manifest (default: built-in)")
	render := fs.Bool("render", settings.Render.Enabled, "Render photo pages in headless Chrome")
	only := fs.String("only", "", "Comma-separated item IDs to fetch")
	fs.Parse(args)

	m, err := loadManifest(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load manifest: %v\n", err)
		return 1
	}
	if *only != "" {
		m, err = selectItems(m, splitIDs(*only))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	store, err := openLedger(settings.LedgerDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open ledger: %v\n", err)
		return 1
	}
	if store != nil {
		defer store.Close()
	}

	client := newClient(settings)

	source, closeSource, err := newPageSource(ctx, settings, client, *render)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeSource()

	res := resolver.New(source, settings.Scraper)
	runner := covers.NewRunner(client, covers.DefaultShapes(settings.Scraper, res), *outputRoot)
	runner.MinImageBytes = settings.MinImageBytes
	runner.Logger = newLogger(*verbose)
	if store != nil {
		runner.Recorder = store
	}
	runner.OnResult = printFetchResult

	fmt.Printf("Fetching covers for %d items into %s...\n\n", m.Len(), *outputRoot)

	report := runner.Run(ctx, m)

	// Display results
	fmt.Println()
	fmt.Println("Fetch completed:")
	fmt.Printf("  Downloaded: %d\n", report.Succeeded)
	fmt.Printf("  Skipped:    %d\n", report.Skipped)
	fmt.Printf("  Failed:     %d\n", report.Failed)
	if report.Cancelled {
		fmt.Printf("  Cancelled before %d of %d items\n", m.Len()-len(report.Results), m.Len())
	}
	if store != nil {
		fmt.Printf("  Run ID:     %s\n", report.RunID)
	}

	failures := report.Failures()
	if len(failures) > 0 {
		fmt.Println()
		fmt.Println("Download these manually:")
		for _, f := range failures {
			fmt.Printf("  - %s: %s -> %s\n", f.Item.ID, f.Item.Source, f.Path)
		}
	}

	// Exit with error code if any items failed
	if report.Failed > 0 || report.Cancelled {
		return 1
	}
	return 0
}

func printFetchResult(res covers.Result) {
	switch res.Status {
	case covers.StatusSkipped:
		fmt.Printf("⏭ %s: already present (%s)\n", res.Item.ID, formatBytes(res.Bytes))
	case covers.StatusSucceeded:
		fmt.Printf("✓ %s: %s via %s\n", res.Item.ID, formatBytes(res.Bytes), res.Shape)
		if res.Item.Attribution != "" {
			fmt.Printf("  Photo by %s\n", res.Item.Attribution)
		}
	default:
		fmt.Printf("✗ %s: all candidates failed\n", res.Item.ID)
		if res.Err != nil {
			for _, line := range errorLines(res.Err.Error()) {
				fmt.Printf("  - %s\n", line)
			}
		}
	}
}

// newClient builds the HTTP client from settings.
func newClient(settings *config.Settings) *fetcher.Client {
	client := fetcher.NewClient(settings.HTTPTimeout)
	client.UserAgent = settings.UserAgent
	client.MaxRedirects = settings.MaxRedirects
	client.RequireImageContentType = settings.RequireImageContentType
	return client
}

// newPageSource returns the plain HTTP client, or a headless browser when
// render is set. The returned func releases the source.
func newPageSource(
	ctx context.Context,
	settings *config.Settings,
	client *fetcher.Client,
	render bool,
) (resolver.PageSource, func(), error) {
	if !render {
		return client, func() {}, nil
	}

	source, err := resolver.NewRenderSource(ctx, resolver.RenderOptions{
		NavigationTimeout: settings.Render.NavigationTimeout,
		SettleDelay:       settings.Render.SettleDelay,
		UserAgent:         settings.UserAgent,
	})
	if err != nil {
		return nil, nil, err
	}
	return source, source.Close, nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
