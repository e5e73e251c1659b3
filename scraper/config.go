package scraper

// Config describes the photo host whose pages are scraped for cover images
// and the high-resolution variant requested from its image CDN.
type Config struct {
	// PageBaseURL is joined with a bare slug to form a photo page URL.
	PageBaseURL string `yaml:"page_base_url"`

	// ImageHost is the hostname serving the actual image files. Only URLs on
	// this host are accepted by the DOM, payload, and pattern heuristics.
	ImageHost string `yaml:"image_host"`

	// SourceHost serves the legacy "source" redirect API, tried before
	// scraping the page.
	SourceHost string `yaml:"source_host"`

	// ImageSelectors are tried in order against the page. "{host}" is
	// replaced with ImageHost.
	ImageSelectors []string `yaml:"image_selectors"`

	// PayloadKeys are JSON keys scanned in embedded scripts, in priority
	// order.
	PayloadKeys []string `yaml:"payload_keys"`

	Upgrade UpgradeConfig `yaml:"upgrade"`
}

// UpgradeConfig holds the query parameters written by UpgradeResolution.
type UpgradeConfig struct {
	Width   int    `yaml:"width"`
	Quality int    `yaml:"quality"`
	Auto    string `yaml:"auto"`
	Fit     string `yaml:"fit"`
}

// NewConfig creates a host configuration for Unsplash, the host the story
// covers come from.
func NewConfig() *Config {
	return &Config{
		PageBaseURL: "https://unsplash.com/photos",
		ImageHost:   "images.unsplash.com",
		SourceHost:  "source.unsplash.com",
		ImageSelectors: []string{
			`img[data-test="photo-header-image"]`,
			`img[data-testid="photo-header-image"]`,
			`img[alt*="Photo"]`,
			`img[class*="Photo"]`,
			`img[src*="{host}"]`,
			`div[class*="Photo"] img`,
			`picture img`,
		},
		PayloadKeys: []string{"raw", "full", "regular"},
		Upgrade:     DefaultUpgrade(),
	}
}

// DefaultUpgrade returns the 1600px, quality 80, cropped target.
func DefaultUpgrade() UpgradeConfig {
	return UpgradeConfig{
		Width:   1600,
		Quality: 80,
		Auto:    "format",
		Fit:     "crop",
	}
}
