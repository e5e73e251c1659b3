package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pevans/coverfetch/config"
	"github.com/pevans/coverfetch/covers"
	"github.com/pevans/coverfetch/stories"
)

func handlePatch(settings *config.Settings, args []string) int {
	// Parse flags for patch command
	fs := flag.NewFlagSet("patch", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Log every story to stderr")
	contentDir := fs.String("content-dir", settings.ContentDir, "Directory containing story files")
	outputRoot := fs.String("output-root", settings.OutputRoot, "Directory containing covers")
	manifestPath := fs.String("manifest", settings.ManifestPath, "YAML manifest (default: built-in)")
	fs.Parse(args)

	m, err := loadManifest(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load manifest: %v\n", err)
		return 1
	}

	patcher := covers.NewPatcher(stories.NewCatalogue(*contentDir), *outputRoot, settings.PublicPath)
	patcher.MinImageBytes = settings.MinImageBytes
	patcher.Logger = newLogger(*verbose)

	fmt.Println("Updating story frontmatter with cover paths...")
	fmt.Println()

	updated, failed := 0, 0
	for _, res := range patcher.Patch(m) {
		switch res.Status {
		case covers.PatchUpdated:
			updated++
			fmt.Printf("✓ Updated %s\n", res.Path)
		case covers.PatchUnchanged:
			fmt.Printf("  %s already links %s\n", res.ItemID, res.Image)
		case covers.PatchSkipped:
			fmt.Printf("⚠ %s: %s, skipping\n", res.ItemID, res.Reason)
		default:
			failed++
			fmt.Printf("✗ %s: %v\n", res.ItemID, res.Err)
		}
	}

	fmt.Println()
	fmt.Printf("✓ Updated %d story files with cover paths.\n", updated)

	if failed > 0 {
		return 1
	}
	return 0
}
