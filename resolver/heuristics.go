package resolver

import (
	"encoding/json"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/coverfetch/scraper"
)

// Heuristic extracts an image URL from a page, or returns "" when it finds
// nothing. Heuristics must not have side effects.
type Heuristic struct {
	Name string
	Find func(*Page) string
}

// DefaultHeuristics returns the extraction chain in priority order:
// structured data, Open Graph, Twitter card, known image elements, script
// payload keys, and finally a raw scan for the image host's URL grammar.
func DefaultHeuristics(cfg *scraper.Config) []Heuristic {
	host := cfg.ImageHost
	selectors := cfg.ImageSelectors
	keys := cfg.PayloadKeys

	return []Heuristic{
		{Name: "json-ld", Find: JSONLDImage},
		{Name: "og:image", Find: OpenGraphImage},
		{Name: "twitter:image", Find: TwitterImage},
		{Name: "image-element", Find: func(p *Page) string {
			return ElementImage(p, selectors, host)
		}},
		{Name: "script-payload", Find: func(p *Page) string {
			return PayloadImage(p, keys, host)
		}},
		{Name: "host-pattern", Find: func(p *Page) string {
			return HostPatternImage(p, host)
		}},
	}
}

// JSONLDImage returns the image of the first JSON-LD block that has one. The
// image may be a string, an ImageObject with url or contentUrl, or an array
// of either. Blocks that are not valid JSON are skipped.
func JSONLDImage(p *Page) string {
	var found string
	p.Doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		found = p.absolute(documentImage(data))
		return found == ""
	})
	return found
}

// documentImage looks for an image field on a JSON-LD document, a list of
// documents, or an @graph.
func documentImage(v any) string {
	switch t := v.(type) {
	case map[string]any:
		if img, ok := t["image"]; ok {
			if u := imageValue(img); u != "" {
				return u
			}
		}
		if graph, ok := t["@graph"]; ok {
			return documentImage(graph)
		}
	case []any:
		for _, doc := range t {
			if u := documentImage(doc); u != "" {
				return u
			}
		}
	}
	return ""
}

func imageValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		for _, key := range []string{"url", "contentUrl"} {
			if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	case []any:
		for _, item := range t {
			if u := imageValue(item); u != "" {
				return u
			}
		}
	}
	return ""
}

// OpenGraphImage returns the og:image meta content.
func OpenGraphImage(p *Page) string {
	return metaContent(p, `meta[property="og:image"]`)
}

// TwitterImage returns the twitter:image meta content. Sites use either the
// name or the property attribute for Twitter cards.
func TwitterImage(p *Page) string {
	if u := metaContent(p, `meta[name="twitter:image"]`); u != "" {
		return u
	}
	return metaContent(p, `meta[property="twitter:image"]`)
}

func metaContent(p *Page, selector string) string {
	var found string
	p.Doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		content, _ := s.Attr("content")
		found = p.absolute(content)
		return found == ""
	})
	return found
}

// ElementImage checks the first element matched by each selector, in order.
// A srcset entry on the image host is preferred over src, and the widest
// srcset entry wins.
func ElementImage(p *Page, selectors []string, host string) string {
	for _, selector := range selectors {
		selector = strings.ReplaceAll(selector, "{host}", host)
		img := p.Doc.Find(selector).First()
		if img.Length() == 0 {
			continue
		}

		if srcset, ok := img.Attr("srcset"); ok {
			if best := p.absolute(LargestSrcset(srcset)); onHost(best, host) {
				return best
			}
		}
		if src, ok := img.Attr("src"); ok {
			if u := p.absolute(src); onHost(u, host) {
				return u
			}
		}
	}
	return ""
}

// LargestSrcset returns the URL with the largest width or density descriptor.
// Entries without a descriptor rank lowest; on a tie the later entry wins,
// since srcsets are conventionally listed smallest first.
func LargestSrcset(srcset string) string {
	var best string
	bestScore := -1.0

	for _, entry := range strings.Split(srcset, ",") {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}

		score := 0.0
		if len(fields) > 1 {
			descriptor := fields[1]
			if n := len(descriptor); n > 1 && (descriptor[n-1] == 'w' || descriptor[n-1] == 'x') {
				if v, err := strconv.ParseFloat(descriptor[:n-1], 64); err == nil {
					score = v
				}
			}
		}

		if score >= bestScore {
			best = fields[0]
			bestScore = score
		}
	}
	return best
}

// PayloadImage scans embedded script bodies for `"key":"<image host URL>"`,
// trying keys in order. JSON escapes in the captured URL are decoded.
func PayloadImage(p *Page, keys []string, host string) string {
	var scripts strings.Builder
	p.Doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		scripts.WriteString(s.Text())
		scripts.WriteByte('\n')
	})
	body := scripts.String()
	if body == "" {
		return ""
	}

	for _, key := range keys {
		pattern := regexp.MustCompile(`"` + regexp.QuoteMeta(key) +
			`"\s*:\s*"(https?:(?:\\?/){2}` + regexp.QuoteMeta(host) + `(?:\\?/)[^"]*)"`)
		if m := pattern.FindStringSubmatch(body); m != nil {
			return decodeJSONString(m[1])
		}
	}
	return ""
}

func decodeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}

// HostPatternImage scans the whole document for any URL matching the image
// host's photo path grammar. Matches inside script strings may carry JSON
// escapes such as \/ and \u0026; these are decoded along with HTML entities.
func HostPatternImage(p *Page, host string) string {
	pattern := regexp.MustCompile(`https?:(?:\\?/){2}` + regexp.QuoteMeta(host) + `\\?/photo-[^"'\s)<>]+`)
	m := pattern.FindString(p.Raw)
	if m == "" {
		return ""
	}
	if strings.Contains(m, `\`) {
		m = decodeJSONString(strings.TrimRight(m, `\`))
	}
	return html.UnescapeString(m)
}

func onHost(raw, host string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), host)
}
