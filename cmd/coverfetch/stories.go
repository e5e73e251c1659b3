package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pevans/coverfetch/config"
	"github.com/pevans/coverfetch/covers"
	"github.com/pevans/coverfetch/fetcher"
	"github.com/pevans/coverfetch/stories"
)

// storyRow is one story with its cover status.
type storyRow struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Date       string `json:"date,omitempty"`
	Image      string `json:"image,omitempty"`
	CoverBytes int64  `json:"cover_bytes"`
	HasCover   bool   `json:"has_cover"`
}

func handleStories(settings *config.Settings, args []string) int {
	// Parse flags for stories command
	fs := flag.NewFlagSet("stories", flag.ExitOnError)
	contentDir := fs.String("content-dir", settings.ContentDir, "Directory containing story files")
	outputRoot := fs.String("output-root", settings.OutputRoot, "Directory containing covers")
	format := fs.String("format", "table", "Output format: table or json")
	missing := fs.Bool("missing", false, "Only show stories without a valid cover")
	fs.Parse(args)

	result, err := stories.NewCatalogue(*contentDir).List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	rows := storyRows(result.Stories, *outputRoot, settings.MinImageBytes, *missing)

	switch *format {
	case "json":
		printStoriesJSON(rows, result.Errors)
	default:
		printStoriesTable(rows, result.Errors)
	}

	if len(result.Errors) > 0 {
		return 1
	}
	return 0
}

// storyRows pairs each story with the cover found under outputRoot. With
// missing set, stories that have both a valid cover and an image link are
// left out.
func storyRows(list []stories.Story, outputRoot string, minBytes int64, missing bool) []storyRow {
	var rows []storyRow
	for _, s := range list {
		size, ok := fetcher.FileSize(covers.CoverPath(outputRoot, s.ID), minBytes)
		if missing && ok && s.HasImage() {
			continue
		}

		row := storyRow{
			ID:         s.ID,
			Title:      s.Title,
			Image:      s.Image,
			CoverBytes: size,
			HasCover:   ok,
		}
		if s.Date != nil {
			row.Date = s.Date.Format("2006-01-02")
		}
		rows = append(rows, row)
	}
	return rows
}

func printStoriesTable(rows []storyRow, readErrs []stories.ReadError) {
	if len(rows) == 0 {
		fmt.Println("No stories to display.")
	} else {
		tableRows := make([][]string, 0, len(rows))
		for _, r := range rows {
			cover := "✗"
			if r.HasCover {
				cover = "✓ " + formatBytes(r.CoverBytes)
			}
			linked := "✗"
			if r.Image != "" {
				linked = "✓"
			}
			date := r.Date
			if date == "" {
				date = "-"
			}
			tableRows = append(tableRows, []string{r.ID, date, truncate(r.Title, 50), cover, linked})
		}

		fmt.Println(renderTable(
			[]string{"ID", "DATE", "TITLE", "COVER", "LINKED"},
			tableRows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
	}

	if len(readErrs) > 0 {
		fmt.Println()
		fmt.Println("Unreadable story files:")
		for _, e := range readErrs {
			fmt.Printf("  ✗ %s\n", e.Error())
		}
	}
}

func printStoriesJSON(rows []storyRow, readErrs []stories.ReadError) {
	errs := make([]string, 0, len(readErrs))
	for _, e := range readErrs {
		errs = append(errs, e.Error())
	}

	output := map[string]any{
		"stories": rows,
		"errors":  errs,
		"total":   len(rows),
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Println(string(data))
}
