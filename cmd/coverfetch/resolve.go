package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/coverfetch/config"
	"github.com/pevans/coverfetch/resolver"
)

func handleResolve(ctx context.Context, settings *config.Settings, args []string) int {
	// Parse flags for resolve command
	fs := flag.NewFlagSet("resolve", flag.ExitOnError)
	render := fs.Bool("render", settings.Render.Enabled, "Render the page in headless Chrome")
	format := fs.String("format", "text", "Output format: text or json")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: page URL or slug is required\n")
		fmt.Fprintf(os.Stderr, "Usage: coverfetch resolve [--render] [--format text|json] <url-or-slug>\n")
		return 1
	}
	ref := fs.Arg(0)

	client := newClient(settings)
	source, closeSource, err := newPageSource(ctx, settings, client, *render)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeSource()

	r := resolver.New(source, settings.Scraper)
	match, err := r.Resolve(ctx, ref)
	if err != nil {
		var noMatch *resolver.NoMatchError
		if errors.As(err, &noMatch) {
			fmt.Printf("✗ No image found on %s\n", noMatch.PageURL)
			fmt.Println("  Try --render if the page builds its content with JavaScript.")
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	upgraded := r.Upgrade(match.URL)

	switch *format {
	case "json":
		output := map[string]string{
			"page_url":  r.PageURL(ref),
			"heuristic": match.Heuristic,
			"candidate": match.URL,
			"url":       upgraded,
		}
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
	default:
		fmt.Printf("✓ Found image via %s\n", match.Heuristic)
		fmt.Printf("  Page:      %s\n", r.PageURL(ref))
		fmt.Printf("  Candidate: %s\n", match.URL)
		fmt.Printf("  Upgraded:  %s\n", upgraded)
	}
	return 0
}
