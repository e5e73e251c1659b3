package covers

import (
	"errors"
	"log"
	"path"

	"github.com/pevans/coverfetch/fetcher"
	"github.com/pevans/coverfetch/frontmatter"
	"github.com/pevans/coverfetch/manifest"
	"github.com/pevans/coverfetch/stories"
)

// PatchStatus is the outcome of patching one story.
type PatchStatus int

const (
	PatchUpdated PatchStatus = iota
	PatchUnchanged
	PatchSkipped
	PatchFailed
)

func (s PatchStatus) String() string {
	switch s {
	case PatchUpdated:
		return "updated"
	case PatchUnchanged:
		return "unchanged"
	case PatchSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// PatchResult is the outcome for one manifest item.
type PatchResult struct {
	ItemID string
	Path   string
	Image  string
	Status PatchStatus
	Reason string
	Err    error
}

// Patcher writes cover paths into story frontmatter.
type Patcher struct {
	catalogue  *stories.Catalogue
	outputRoot string
	publicPath string

	// MinImageBytes is the size a cover must exceed to be linked.
	MinImageBytes int64

	Logger *log.Logger
}

// NewPatcher creates a patcher for stories in catalogue whose covers live in
// outputRoot and are served under publicPath.
func NewPatcher(catalogue *stories.Catalogue, outputRoot, publicPath string) *Patcher {
	return &Patcher{
		catalogue:     catalogue,
		outputRoot:    outputRoot,
		publicPath:    publicPath,
		MinImageBytes: fetcher.DefaultMinImageBytes,
		Logger:        log.Default(),
	}
}

// PublicCoverPath returns the site URL path of an item's cover.
func (p *Patcher) PublicCoverPath(id string) string {
	return path.Join("/", p.publicPath, id, CoverFilename)
}

// Patch links the cover of every manifest item that has a valid one. Items
// without a story file or a valid cover are skipped; a story whose
// frontmatter cannot be patched is a failure for that item only.
func (p *Patcher) Patch(m *manifest.Manifest) []PatchResult {
	results := make([]PatchResult, 0, m.Len())
	for _, item := range m.Items() {
		results = append(results, p.PatchItem(item.ID))
	}
	return results
}

// PatchItem links the cover of a single item.
func (p *Patcher) PatchItem(id string) PatchResult {
	res := PatchResult{ItemID: id, Image: p.PublicCoverPath(id)}

	storyPath, err := p.catalogue.Path(id)
	if err != nil {
		res.Err = err
		if errors.Is(err, stories.ErrStoryNotFound) {
			res.Status = PatchSkipped
			res.Reason = "story file not found"
			p.Logger.Printf("WARN: Story %s: no story file in %s", id, p.catalogue.Dir())
			return res
		}
		res.Status = PatchFailed
		p.Logger.Printf("ERROR: Story %s: %v", id, err)
		return res
	}
	res.Path = storyPath

	if _, ok := fetcher.FileSize(CoverPath(p.outputRoot, id), p.MinImageBytes); !ok {
		res.Status = PatchSkipped
		res.Reason = "no valid cover image"
		p.Logger.Printf("WARN: Story %s: no valid cover, skipping", id)
		return res
	}

	changed, err := frontmatter.PatchFile(storyPath, res.Image)
	if err != nil {
		res.Status = PatchFailed
		res.Err = err
		p.Logger.Printf("ERROR: Story %s: failed to patch %s: %v", id, storyPath, err)
		return res
	}

	if changed {
		res.Status = PatchUpdated
		p.Logger.Printf("INFO: Story %s: image set to %s", id, res.Image)
	} else {
		res.Status = PatchUnchanged
	}
	return res
}
