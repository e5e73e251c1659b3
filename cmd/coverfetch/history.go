package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/pevans/coverfetch/config"
	"github.com/pevans/coverfetch/ledger"
)

func handleHistory(settings *config.Settings, args []string) int {
	// Parse flags for history command
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of attempts to show")
	outcome := fs.String("outcome", "", "Only show succeeded, skipped, or failed attempts")
	run := fs.String("run", "", "Only show attempts from this run ID")
	fs.Parse(args)

	if settings.LedgerDSN == "" {
		fmt.Fprintf(os.Stderr, "Error: the fetch ledger is disabled\n")
		fmt.Fprintf(os.Stderr, "Set ledger.dsn in the config file or COVERFETCH_LEDGER_DSN to enable it.\n")
		return 1
	}

	filter := ledger.Filter{Limit: *limit}
	if fs.NArg() > 0 {
		itemID := fs.Arg(0)
		filter.ItemID = &itemID
	}
	if *outcome != "" {
		filter.Outcome = outcome
	}
	if *run != "" {
		id, err := uuid.Parse(*run)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid run ID: %v\n", err)
			return 1
		}
		filter.RunID = &id
	}

	store, err := openLedger(settings.LedgerDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open ledger: %v\n", err)
		return 1
	}
	defer store.Close()

	attempts, err := store.List(filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if len(attempts) == 0 {
		fmt.Println("No attempts recorded.")
		return 0
	}

	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		detail := a.URL
		if a.Error != nil {
			lines := errorLines(*a.Error)
			if len(lines) > 0 {
				detail = lines[len(lines)-1]
			}
		}
		rows = append(rows, []string{
			a.AttemptedAt.Local().Format("2006-01-02 15:04:05"),
			a.RunID.String()[:8],
			a.ItemID,
			outcomeMarker(a.Outcome),
			a.Shape,
			formatBytes(a.Bytes),
			truncate(detail, 70),
		})
	}

	fmt.Println(renderTable(
		[]string{"WHEN", "RUN", "ITEM", "OUTCOME", "SHAPE", "SIZE", "URL / ERROR"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
	return 0
}

func outcomeMarker(outcome string) string {
	switch outcome {
	case ledger.OutcomeSucceeded:
		return "✓ " + outcome
	case ledger.OutcomeSkipped:
		return "⏭ " + outcome
	default:
		return "✗ " + outcome
	}
}
