package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/coverfetch/scraper"
	"gopkg.in/yaml.v3"
)

// RenderFileConfig is the render section of the config file.
type RenderFileConfig struct {
	Enabled           *bool  `yaml:"enabled"`
	NavigationTimeout string `yaml:"navigation_timeout"`
	SettleDelay       string `yaml:"settle_delay"`
}

// LedgerFileConfig is the ledger section of the config file.
type LedgerFileConfig struct {
	DSN string `yaml:"dsn"`
}

// FileConfig represents the structure of ~/.coverfetch/config.yaml. Unset
// fields leave the defaults in place.
type FileConfig struct {
	OutputRoot              string           `yaml:"output_root"`
	ContentDir              string           `yaml:"content_dir"`
	PublicPath              string           `yaml:"public_path"`
	Manifest                string           `yaml:"manifest"`
	UserAgent               string           `yaml:"user_agent"`
	MinImageBytes           int64            `yaml:"min_image_bytes"`
	MaxRedirects            int              `yaml:"max_redirects"`
	HTTPTimeout             string           `yaml:"http_timeout"`
	RequireImageContentType *bool            `yaml:"require_image_content_type"`
	Scraper                 scraper.Config   `yaml:"scraper"`
	Render                  RenderFileConfig `yaml:"render"`
	Ledger                  LedgerFileConfig `yaml:"ledger"`
}

// ConfigPath returns the config file location: $COVERFETCH_CONFIG when set,
// otherwise ~/.coverfetch/config.yaml.
func ConfigPath() (string, error) {
	if path := os.Getenv("COVERFETCH_CONFIG"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".coverfetch", "config.yaml"), nil
}

// LoadConfigFile loads configuration from ConfigPath. Returns nil if the file
// doesn't exist (not an error). Returns error if the file exists but cannot
// be parsed.
func LoadConfigFile() (*FileConfig, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadConfigFileFrom(configPath)
}

// LoadConfigFileFrom loads configuration from configPath, with the same
// missing-file behavior as LoadConfigFile.
func LoadConfigFileFrom(configPath string) (*FileConfig, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil // File doesn't exist -- not an error
	}

	// Read file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}
