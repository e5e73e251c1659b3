package resolver

import (
	"net/url"
	"strconv"

	"github.com/pevans/coverfetch/scraper"
)

// UpgradeResolution rewrites the width, quality, format, and crop parameters of
// an image CDN URL to the target in cfg, appending any that are missing. The
// long-form "width" and "quality" keys are rewritten in place when the short
// form is absent. Other parameters are kept. Applying it twice gives the same
// URL as applying it once. Unparseable or relative URLs are returned
// unchanged.
func UpgradeResolution(candidate string, cfg scraper.UpgradeConfig) string {
	u, err := url.Parse(candidate)
	if err != nil || u.Host == "" {
		return candidate
	}

	q := u.Query()

	widthKey := "w"
	if !q.Has("w") && q.Has("width") {
		widthKey = "width"
	}
	qualityKey := "q"
	if !q.Has("q") && q.Has("quality") {
		qualityKey = "quality"
	}

	if cfg.Width > 0 {
		q.Set(widthKey, strconv.Itoa(cfg.Width))
	}
	if cfg.Quality > 0 {
		q.Set(qualityKey, strconv.Itoa(cfg.Quality))
	}
	if cfg.Auto != "" {
		q.Set("auto", cfg.Auto)
	}
	if cfg.Fit != "" {
		q.Set("fit", cfg.Fit)
	}

	u.RawQuery = q.Encode()
	return u.String()
}
