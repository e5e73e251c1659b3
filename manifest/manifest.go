// Package manifest holds the list of stories whose cover images are fetched.
package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned when a manifest has an empty or duplicate id
// or an item without a source.
var ErrInvalidManifest = errors.New("invalid manifest")

// ContentItem is one story that needs a cover image.
type ContentItem struct {
	// ID is the zero-padded story identifier, e.g. "002". It names both the
	// story file and the cover directory.
	ID string `yaml:"id"`

	// Source is a photo page URL or a bare slug.
	Source string `yaml:"source"`

	// Attribution credits the photographer.
	Attribution string `yaml:"attribution"`
}

// Slug returns the last path segment of a photo page URL, or Source itself
// when it is already a bare slug.
func (c ContentItem) Slug() string {
	source := strings.TrimSpace(c.Source)
	if !strings.Contains(source, "://") {
		return strings.Trim(source, "/")
	}

	u, err := url.Parse(source)
	if err != nil {
		return source
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	return segments[len(segments)-1]
}

// Manifest is an ordered, immutable list of content items.
type Manifest struct {
	items []ContentItem
}

// New validates items and returns a manifest holding a copy of them.
func New(items []ContentItem) (*Manifest, error) {
	if err := Validate(items); err != nil {
		return nil, err
	}

	copied := make([]ContentItem, len(items))
	copy(copied, items)
	return &Manifest{items: copied}, nil
}

// Validate checks that every item has an id and a source and that ids are
// unique.
func Validate(items []ContentItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidManifest)
	}

	seen := make(map[string]int, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return fmt.Errorf("%w: item %d has an empty id", ErrInvalidManifest, i+1)
		}
		if strings.TrimSpace(item.Source) == "" {
			return fmt.Errorf("%w: item %s has an empty source", ErrInvalidManifest, item.ID)
		}
		if first, ok := seen[item.ID]; ok {
			return fmt.Errorf("%w: id %s appears at items %d and %d", ErrInvalidManifest, item.ID, first, i+1)
		}
		seen[item.ID] = i + 1
	}
	return nil
}

// Items returns a copy of the items in manifest order.
func (m *Manifest) Items() []ContentItem {
	items := make([]ContentItem, len(m.items))
	copy(items, m.items)
	return items
}

// Len returns the number of items.
func (m *Manifest) Len() int {
	return len(m.items)
}

// Get returns the item with the given id.
func (m *Manifest) Get(id string) (ContentItem, bool) {
	for _, item := range m.items {
		if item.ID == id {
			return item, true
		}
	}
	return ContentItem{}, false
}

// IDs returns the item ids in manifest order.
func (m *Manifest) IDs() []string {
	ids := make([]string, len(m.items))
	for i, item := range m.items {
		ids[i] = item.ID
	}
	return ids
}

// file is the on-disk layout of a manifest.
type file struct {
	Items []ContentItem `yaml:"items"`
}

// Load reads a manifest from a YAML file. The file may be either a list of
// items or a mapping with an "items" key.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return Parse(data)
}

// Parse decodes a manifest from YAML.
func Parse(data []byte) (*Manifest, error) {
	var items []ContentItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %w", err)
		}
		items = f.Items
	}

	return New(items)
}
