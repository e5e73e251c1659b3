package covers

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/pevans/coverfetch/frontmatter"
	"github.com/pevans/coverfetch/internal/testsupport"
	"github.com/pevans/coverfetch/stories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPatcher(t *testing.T) (*Patcher, string, string) {
	t.Helper()
	contentDir := t.TempDir()
	outputRoot := t.TempDir()

	p := NewPatcher(stories.NewCatalogue(contentDir), outputRoot, "/images/stories")
	p.Logger = log.New(io.Discard, "", 0)
	return p, contentDir, outputRoot
}

// TestPatch_Outcomes verifies each per-item outcome in one batch
func TestPatch_Outcomes(t *testing.T) {
	p, contentDir, outputRoot := newTestPatcher(t)

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(contentDir, name), []byte(content), 0o644))
	}

	// 002: cover present, image inserted after date
	write("002.mdx", "---\ntitle: City\ndate: 2024-01-01\n---\nBody\n")
	testsupport.WriteFile(t, CoverPath(outputRoot, "002"), 6000)

	// 003: already linked
	write("003.mdx", "---\ndate: 2024-01-02\nimage: /images/stories/003/cover.jpg\n---\n")
	testsupport.WriteFile(t, CoverPath(outputRoot, "003"), 6000)

	// 004: cover too small
	write("004.mdx", "---\ndate: 2024-01-03\n---\n")
	testsupport.WriteFile(t, CoverPath(outputRoot, "004"), 5000)

	// 005: no story file
	testsupport.WriteFile(t, CoverPath(outputRoot, "005"), 6000)

	// 006: no anchor line
	write("006.mdx", "---\ntitle: Anchorless\n---\n")
	testsupport.WriteFile(t, CoverPath(outputRoot, "006"), 6000)

	results := p.Patch(testManifest(t, "002", "003", "004", "005", "006"))
	require.Len(t, results, 5)

	assert.Equal(t, PatchUpdated, results[0].Status)
	assert.Equal(t, "/images/stories/002/cover.jpg", results[0].Image)
	data, err := os.ReadFile(filepath.Join(contentDir, "002.mdx"))
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: City\ndate: 2024-01-01\nimage: /images/stories/002/cover.jpg\n---\nBody\n", string(data))

	assert.Equal(t, PatchUnchanged, results[1].Status)

	assert.Equal(t, PatchSkipped, results[2].Status)
	assert.Equal(t, "no valid cover image", results[2].Reason)
	data, err = os.ReadFile(filepath.Join(contentDir, "004.mdx"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "image:")

	assert.Equal(t, PatchSkipped, results[3].Status)
	assert.Equal(t, "story file not found", results[3].Reason)

	assert.Equal(t, PatchFailed, results[4].Status)
	assert.ErrorIs(t, results[4].Err, frontmatter.ErrNoAnchor)
}

// TestPublicCoverPath verifies slashes are normalized
func TestPublicCoverPath(t *testing.T) {
	p := NewPatcher(stories.NewCatalogue(t.TempDir()), t.TempDir(), "images/stories/")
	assert.Equal(t, "/images/stories/010/cover.jpg", p.PublicCoverPath("010"))
}

// TestPatchStatus_String verifies status names
func TestPatchStatus_String(t *testing.T) {
	assert.Equal(t, "updated", PatchUpdated.String())
	assert.Equal(t, "unchanged", PatchUnchanged.String())
	assert.Equal(t, "skipped", PatchSkipped.String())
	assert.Equal(t, "failed", PatchFailed.String())
}
