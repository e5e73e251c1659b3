// Package config resolves coverfetch settings from built-in defaults, the
// YAML config file, and COVERFETCH_* environment variables, in increasing
// order of priority.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pevans/coverfetch/fetcher"
	"github.com/pevans/coverfetch/scraper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "COVERFETCH_"

// RenderSettings controls the headless browser page source.
type RenderSettings struct {
	Enabled           bool
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
}

// Settings is the resolved configuration.
type Settings struct {
	// OutputRoot holds one directory per item, each containing cover.jpg.
	OutputRoot string

	// ContentDir holds the story files ({id}.mdx).
	ContentDir string

	// PublicPath is the URL prefix the site serves OutputRoot under.
	PublicPath string

	// ManifestPath is a YAML manifest; empty means the built-in manifest.
	ManifestPath string

	UserAgent               string
	MinImageBytes           int64
	MaxRedirects            int
	HTTPTimeout             time.Duration
	RequireImageContentType bool

	Scraper *scraper.Config
	Render  RenderSettings

	// LedgerDSN is the SQLite path of the fetch ledger; empty disables it.
	LedgerDSN string
}

// Defaults returns the settings used when nothing is configured. Paths are
// relative to the site checkout the command runs in.
func Defaults() *Settings {
	return &Settings{
		OutputRoot:              "public/images/stories",
		ContentDir:              "src/content/stories",
		PublicPath:              "/images/stories",
		UserAgent:               fetcher.DefaultUserAgent,
		MinImageBytes:           fetcher.DefaultMinImageBytes,
		MaxRedirects:            fetcher.DefaultMaxRedirects,
		RequireImageContentType: true,
		Scraper:                 scraper.NewConfig(),
		Render: RenderSettings{
			NavigationTimeout: 30 * time.Second,
			SettleDelay:       2 * time.Second,
		},
	}
}

// Load resolves settings from defaults, the config file, and the
// environment. A missing config file is not an error; an unparseable file or
// environment value is.
func Load() (*Settings, error) {
	fc, err := LoadConfigFile()
	if err != nil {
		return nil, err
	}

	settings := Defaults()
	if err := settings.ApplyFile(fc); err != nil {
		return nil, err
	}
	if err := settings.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return settings, nil
}

// ApplyFile overrides settings with the fields set in fc. A nil fc is a
// no-op.
func (s *Settings) ApplyFile(fc *FileConfig) error {
	if fc == nil {
		return nil
	}

	setString(&s.OutputRoot, fc.OutputRoot)
	setString(&s.ContentDir, fc.ContentDir)
	setString(&s.PublicPath, fc.PublicPath)
	setString(&s.ManifestPath, fc.Manifest)
	setString(&s.UserAgent, fc.UserAgent)
	setString(&s.LedgerDSN, fc.Ledger.DSN)

	if fc.MinImageBytes > 0 {
		s.MinImageBytes = fc.MinImageBytes
	}
	if fc.MaxRedirects > 0 {
		s.MaxRedirects = fc.MaxRedirects
	}
	if fc.RequireImageContentType != nil {
		s.RequireImageContentType = *fc.RequireImageContentType
	}
	if fc.Render.Enabled != nil {
		s.Render.Enabled = *fc.Render.Enabled
	}

	durations := []struct {
		key   string
		value string
		dest  *time.Duration
	}{
		{"http_timeout", fc.HTTPTimeout, &s.HTTPTimeout},
		{"render.navigation_timeout", fc.Render.NavigationTimeout, &s.Render.NavigationTimeout},
		{"render.settle_delay", fc.Render.SettleDelay, &s.Render.SettleDelay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s in config file: %w", d.key, err)
		}
		*d.dest = parsed
	}

	mergeScraper(s.Scraper, &fc.Scraper)
	return nil
}

// mergeScraper copies the fields set in src onto dst.
func mergeScraper(dst, src *scraper.Config) {
	setString(&dst.PageBaseURL, src.PageBaseURL)
	setString(&dst.ImageHost, src.ImageHost)
	setString(&dst.SourceHost, src.SourceHost)

	if len(src.ImageSelectors) > 0 {
		dst.ImageSelectors = src.ImageSelectors
	}
	if len(src.PayloadKeys) > 0 {
		dst.PayloadKeys = src.PayloadKeys
	}

	if src.Upgrade.Width > 0 {
		dst.Upgrade.Width = src.Upgrade.Width
	}
	if src.Upgrade.Quality > 0 {
		dst.Upgrade.Quality = src.Upgrade.Quality
	}
	setString(&dst.Upgrade.Auto, src.Upgrade.Auto)
	setString(&dst.Upgrade.Fit, src.Upgrade.Fit)
}

// ApplyEnv overrides settings with COVERFETCH_* variables found by lookup.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	env := func(name string) (string, bool) {
		val, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(val) == "" {
			return "", false
		}
		return strings.TrimSpace(val), true
	}

	stringVars := map[string]*string{
		"OUTPUT_ROOT":   &s.OutputRoot,
		"CONTENT_DIR":   &s.ContentDir,
		"PUBLIC_PATH":   &s.PublicPath,
		"MANIFEST":      &s.ManifestPath,
		"USER_AGENT":    &s.UserAgent,
		"LEDGER_DSN":    &s.LedgerDSN,
		"PAGE_BASE_URL": &s.Scraper.PageBaseURL,
		"IMAGE_HOST":    &s.Scraper.ImageHost,
		"SOURCE_HOST":   &s.Scraper.SourceHost,
	}
	for name, dest := range stringVars {
		if val, ok := env(name); ok {
			*dest = val
		}
	}

	if val, ok := env("MIN_IMAGE_BYTES"); ok {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %sMIN_IMAGE_BYTES %q", EnvPrefix, val)
		}
		s.MinImageBytes = n
	}
	if val, ok := env("MAX_REDIRECTS"); ok {
		n, err := strconv.Atoi(val)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %sMAX_REDIRECTS %q", EnvPrefix, val)
		}
		s.MaxRedirects = n
	}

	bools := map[string]*bool{
		"REQUIRE_IMAGE_CONTENT_TYPE": &s.RequireImageContentType,
		"RENDER":                     &s.Render.Enabled,
	}
	for name, dest := range bools {
		if val, ok := env(name); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, val, err)
			}
			*dest = b
		}
	}

	durations := map[string]*time.Duration{
		"HTTP_TIMEOUT":              &s.HTTPTimeout,
		"RENDER_NAVIGATION_TIMEOUT": &s.Render.NavigationTimeout,
		"RENDER_SETTLE_DELAY":       &s.Render.SettleDelay,
	}
	for name, dest := range durations {
		if val, ok := env(name); ok {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, val, err)
			}
			*dest = d
		}
	}

	return nil
}

func setString(dest *string, value string) {
	if value != "" {
		*dest = value
	}
}
