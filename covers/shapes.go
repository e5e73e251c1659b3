package covers

import (
	"context"
	"fmt"

	"github.com/pevans/coverfetch/manifest"
	"github.com/pevans/coverfetch/resolver"
	"github.com/pevans/coverfetch/scraper"
)

// Shape builds one candidate image URL for an item. Shapes are tried in
// order until one yields a valid file.
type Shape struct {
	Name      string
	Candidate func(ctx context.Context, item manifest.ContentItem) (string, error)
}

// PageResolver finds and upgrades the image on an item's photo page.
// resolver.Resolver implements it.
type PageResolver interface {
	Resolve(ctx context.Context, ref string) (resolver.Match, error)
	Upgrade(candidate string) string
}

// SourceTemplateShape guesses the legacy source API URL for the item's slug,
// sized to the upgrade width at a 4:3 ratio.
func SourceTemplateShape(sourceHost string, upgrade scraper.UpgradeConfig) Shape {
	return Shape{
		Name: "source-template",
		Candidate: func(_ context.Context, item manifest.ContentItem) (string, error) {
			return fmt.Sprintf("https://%s/%s/%dx%d",
				sourceHost, item.Slug(), upgrade.Width, upgrade.Width*3/4), nil
		},
	}
}

// DirectSlugShape guesses that the slug is the image CDN's photo id.
func DirectSlugShape(imageHost string, upgrade scraper.UpgradeConfig) Shape {
	return Shape{
		Name: "direct-slug",
		Candidate: func(_ context.Context, item manifest.ContentItem) (string, error) {
			return fmt.Sprintf("https://%s/photo-%s?w=%d&q=%d&auto=%s&fit=%s",
				imageHost, item.Slug(), upgrade.Width, upgrade.Quality, upgrade.Auto, upgrade.Fit), nil
		},
	}
}

// PageResolveShape scrapes the item's photo page and upgrades the image it
// finds to the target resolution.
func PageResolveShape(r PageResolver) Shape {
	return Shape{
		Name: "page-resolve",
		Candidate: func(ctx context.Context, item manifest.ContentItem) (string, error) {
			match, err := r.Resolve(ctx, item.Source)
			if err != nil {
				return "", err
			}
			return r.Upgrade(match.URL), nil
		},
	}
}

// DefaultShapes returns source-template, direct-slug, and page-resolve, in
// that order.
func DefaultShapes(cfg *scraper.Config, r PageResolver) []Shape {
	return []Shape{
		SourceTemplateShape(cfg.SourceHost, cfg.Upgrade),
		DirectSlugShape(cfg.ImageHost, cfg.Upgrade),
		PageResolveShape(r),
	}
}
