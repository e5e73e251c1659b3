package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Get subcommand
	subcommand := os.Args[1]
	args := os.Args[2:]

	if subcommand == "help" || subcommand == "--help" || subcommand == "-h" {
		printUsage()
		return
	}

	// Ctrl-C cancels the in-flight request and stops the batch
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := loadSettings()

	var code int
	switch subcommand {
	case "fetch":
		code = handleFetch(ctx, settings, args)
	case "patch":
		code = handlePatch(settings, args)
	case "resolve":
		code = handleResolve(ctx, settings, args)
	case "stories":
		code = handleStories(settings, args)
	case "history":
		code = handleHistory(settings, args)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		code = 1
	}

	stop()
	os.Exit(code)
}

func printUsage() {
	fmt.Println("coverfetch - Story cover image fetcher")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  coverfetch <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  fetch               Download a cover for every manifest item")
	fmt.Println("  patch               Write cover paths into story frontmatter")
	fmt.Println("  resolve <url|slug>  Find the image URL on one photo page")
	fmt.Println("  stories             List stories and their cover status")
	fmt.Println("  history [item-id]   Show recorded fetch attempts")
	fmt.Println("  help                Show this help message")
	fmt.Println()
	fmt.Println("Configuration is read from ~/.coverfetch/config.yaml (or $COVERFETCH_CONFIG)")
	fmt.Println("and overridden by environment variables:")
	fmt.Println("  COVERFETCH_OUTPUT_ROOT     Cover directory (default: public/images/stories)")
	fmt.Println("  COVERFETCH_CONTENT_DIR     Story directory (default: src/content/stories)")
	fmt.Println("  COVERFETCH_PUBLIC_PATH     URL prefix for covers (default: /images/stories)")
	fmt.Println("  COVERFETCH_MANIFEST        YAML manifest (default: built-in)")
	fmt.Println("  COVERFETCH_MIN_IMAGE_BYTES Smallest file size rejected (default: 5000)")
	fmt.Println("  COVERFETCH_MAX_REDIRECTS   Redirect hop limit (default: 10)")
	fmt.Println("  COVERFETCH_HTTP_TIMEOUT    Per-request timeout (default: none)")
	fmt.Println("  COVERFETCH_RENDER          Render pages in headless Chrome (default: false)")
	fmt.Println("  COVERFETCH_LEDGER_DSN      Fetch ledger database (default: disabled)")
}
