package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pevans/coverfetch/config"
	"github.com/pevans/coverfetch/ledger"
	"github.com/pevans/coverfetch/manifest"
)

// loadSettings resolves configuration from defaults, the config file, and
// the environment. Configuration errors are fatal.
func loadSettings() *config.Settings {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return settings
}

// loadManifest returns the configured manifest, or the built-in one.
func loadManifest(path string) (*manifest.Manifest, error) {
	if path == "" {
		return manifest.Default(), nil
	}
	return manifest.Load(path)
}

// selectItems narrows m to the given ids, keeping manifest order.
func selectItems(m *manifest.Manifest, ids []string) (*manifest.Manifest, error) {
	if len(ids) == 0 {
		return m, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.Get(id); !ok {
			return nil, fmt.Errorf("item %s is not in the manifest", id)
		}
		wanted[id] = true
	}

	var items []manifest.ContentItem
	for _, item := range m.Items() {
		if wanted[item.ID] {
			items = append(items, item)
		}
	}
	return manifest.New(items)
}

// openLedger opens the fetch ledger, or returns nil when it is disabled.
func openLedger(dsn string) (*ledger.Store, error) {
	if dsn == "" {
		return nil, nil
	}
	return ledger.NewStore(dsn)
}

// newLogger returns a logger for operational messages, discarding them
// unless verbose is set.
func newLogger(verbose bool) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}
