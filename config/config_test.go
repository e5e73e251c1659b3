package config

import (
	"testing"
	"time"

	"github.com/pevans/coverfetch/fetcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: build a lookup function from a map
func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		val, ok := vars[key]
		return val, ok
	}
}

// TestDefaults verifies the built-in settings
func TestDefaults(t *testing.T) {
	s := Defaults()

	assert.Equal(t, "public/images/stories", s.OutputRoot)
	assert.Equal(t, "src/content/stories", s.ContentDir)
	assert.Equal(t, "/images/stories", s.PublicPath)
	assert.Empty(t, s.ManifestPath)
	assert.Equal(t, int64(5000), s.MinImageBytes)
	assert.Equal(t, 10, s.MaxRedirects)
	assert.Zero(t, s.HTTPTimeout)
	assert.True(t, s.RequireImageContentType)
	assert.False(t, s.Render.Enabled)
	assert.Equal(t, 30*time.Second, s.Render.NavigationTimeout)
	assert.Equal(t, 2*time.Second, s.Render.SettleDelay)
	assert.Empty(t, s.LedgerDSN)
	assert.Equal(t, fetcher.DefaultUserAgent, s.UserAgent)
	assert.Equal(t, "images.unsplash.com", s.Scraper.ImageHost)
}

// TestPrecedence verifies defaults < file < environment
func TestPrecedence(t *testing.T) {
	enabled := true
	fc := &FileConfig{
		OutputRoot:  "file-root",
		ContentDir:  "file-content",
		HTTPTimeout: "20s",
		Render:      RenderFileConfig{Enabled: &enabled, NavigationTimeout: "10s"},
	}
	fc.Scraper.ImageHost = "file.example.com"
	fc.Scraper.Upgrade.Quality = 90

	s := Defaults()
	require.NoError(t, s.ApplyFile(fc))
	require.NoError(t, s.ApplyEnv(envMap(map[string]string{
		"COVERFETCH_OUTPUT_ROOT":  "env-root",
		"COVERFETCH_IMAGE_HOST":   "env.example.com",
		"COVERFETCH_HTTP_TIMEOUT": "5s",
		"COVERFETCH_RENDER":       "false",
		"COVERFETCH_LEDGER_DSN":   "env.db",
		"COVERFETCH_PUBLIC_PATH":  "   ",
	})))

	// Environment wins
	assert.Equal(t, "env-root", s.OutputRoot)
	assert.Equal(t, "env.example.com", s.Scraper.ImageHost)
	assert.Equal(t, 5*time.Second, s.HTTPTimeout)
	assert.False(t, s.Render.Enabled)
	assert.Equal(t, "env.db", s.LedgerDSN)

	// File beats defaults
	assert.Equal(t, "file-content", s.ContentDir)
	assert.Equal(t, 10*time.Second, s.Render.NavigationTimeout)
	assert.Equal(t, 90, s.Scraper.Upgrade.Quality)

	// Untouched defaults, including blank environment values
	assert.Equal(t, "/images/stories", s.PublicPath)
	assert.Equal(t, 1600, s.Scraper.Upgrade.Width)
	assert.Equal(t, "https://unsplash.com/photos", s.Scraper.PageBaseURL)
}

// TestApplyFile_Nil verifies a missing file leaves defaults alone
func TestApplyFile_Nil(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.ApplyFile(nil))
	assert.Equal(t, Defaults().OutputRoot, s.OutputRoot)
}

// TestApplyFile_InvalidDuration verifies bad durations are reported by key
func TestApplyFile_InvalidDuration(t *testing.T) {
	err := Defaults().ApplyFile(&FileConfig{Render: RenderFileConfig{SettleDelay: "soon"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.settle_delay")
}

// TestApplyEnv_InvalidValues verifies unparseable variables are errors
func TestApplyEnv_InvalidValues(t *testing.T) {
	for _, vars := range []map[string]string{
		{"COVERFETCH_MIN_IMAGE_BYTES": "lots"},
		{"COVERFETCH_MIN_IMAGE_BYTES": "-1"},
		{"COVERFETCH_MAX_REDIRECTS": "0"},
		{"COVERFETCH_REQUIRE_IMAGE_CONTENT_TYPE": "maybe"},
		{"COVERFETCH_RENDER_SETTLE_DELAY": "2"},
	} {
		err := Defaults().ApplyEnv(envMap(vars))
		assert.Error(t, err, vars)
	}
}

// TestApplyEnv_Numbers verifies numeric and boolean overrides
func TestApplyEnv_Numbers(t *testing.T) {
	s := Defaults()
	require.NoError(t, s.ApplyEnv(envMap(map[string]string{
		"COVERFETCH_MIN_IMAGE_BYTES":            "12000",
		"COVERFETCH_MAX_REDIRECTS":              "3",
		"COVERFETCH_REQUIRE_IMAGE_CONTENT_TYPE": "false",
	})))

	assert.Equal(t, int64(12000), s.MinImageBytes)
	assert.Equal(t, 3, s.MaxRedirects)
	assert.False(t, s.RequireImageContentType)
}

// TestLoad verifies the full resolution from HOME and the environment
func TestLoad(t *testing.T) {
	withHome(t, "content_dir: from-file\nmax_redirects: 6\n")
	t.Setenv("COVERFETCH_MAX_REDIRECTS", "2")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", s.ContentDir)
	assert.Equal(t, 2, s.MaxRedirects)
}

// TestLoad_InvalidFile verifies a broken config file stops loading
func TestLoad_InvalidFile(t *testing.T) {
	withHome(t, "http_timeout: [1, 2]\n")

	_, err := Load()
	assert.Error(t, err)
}
