package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: point HOME at a temp dir, optionally with a config file
func withHome(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("COVERFETCH_CONFIG", "")

	if content != "" {
		dir := filepath.Join(tmpDir, ".coverfetch")
		require.NoError(t, os.MkdirAll(dir, 0o700))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	}
	return tmpDir
}

// TestLoadConfigFile_NoFile verifies a missing file is not an error
func TestLoadConfigFile_NoFile(t *testing.T) {
	withHome(t, "")

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	assert.Nil(t, cfg, "Should return nil when config file doesn't exist")
}

// TestLoadConfigFile_ValidConfig verifies every section is decoded
func TestLoadConfigFile_ValidConfig(t *testing.T) {
	withHome(t, `output_root: covers
content_dir: content/stories
public_path: /covers
manifest: manifest.yaml
min_image_bytes: 8000
max_redirects: 4
http_timeout: 45s
require_image_content_type: false
scraper:
  image_host: images.example.com
  payload_keys: [full]
  upgrade:
    width: 2400
render:
  enabled: true
  settle_delay: 500ms
ledger:
  dsn: /tmp/ledger.db
`)

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "covers", cfg.OutputRoot)
	assert.Equal(t, "content/stories", cfg.ContentDir)
	assert.Equal(t, "/covers", cfg.PublicPath)
	assert.Equal(t, "manifest.yaml", cfg.Manifest)
	assert.Equal(t, int64(8000), cfg.MinImageBytes)
	assert.Equal(t, 4, cfg.MaxRedirects)
	assert.Equal(t, "45s", cfg.HTTPTimeout)
	require.NotNil(t, cfg.RequireImageContentType)
	assert.False(t, *cfg.RequireImageContentType)
	assert.Equal(t, "images.example.com", cfg.Scraper.ImageHost)
	assert.Equal(t, []string{"full"}, cfg.Scraper.PayloadKeys)
	assert.Equal(t, 2400, cfg.Scraper.Upgrade.Width)
	require.NotNil(t, cfg.Render.Enabled)
	assert.True(t, *cfg.Render.Enabled)
	assert.Equal(t, "500ms", cfg.Render.SettleDelay)
	assert.Equal(t, "/tmp/ledger.db", cfg.Ledger.DSN)
}

// TestLoadConfigFile_InvalidYAML verifies a malformed file is an error
func TestLoadConfigFile_InvalidYAML(t *testing.T) {
	withHome(t, `render:
  - this is invalid because render should be a mapping
`)

	cfg, err := LoadConfigFile()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

// TestLoadConfigFile_ExplicitPath verifies COVERFETCH_CONFIG overrides the
// home directory location
func TestLoadConfigFile_ExplicitPath(t *testing.T) {
	withHome(t, "output_root: from-home\n")

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_root: from-custom\n"), 0o600))
	t.Setenv("COVERFETCH_CONFIG", path)

	cfg, err := LoadConfigFile()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "from-custom", cfg.OutputRoot)
}
