package main

import (
	"testing"

	"github.com/pevans/coverfetch/covers"
	"github.com/pevans/coverfetch/internal/testsupport"
	"github.com/pevans/coverfetch/stories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStoryRows_ReadsCoversFromOutputRoot verifies covers are looked up under
// the given output root rather than the configured one
func TestStoryRows_ReadsCoversFromOutputRoot(t *testing.T) {
	outputRoot := t.TempDir()
	testsupport.WriteFile(t, covers.CoverPath(outputRoot, "002"), 6000)
	testsupport.WriteFile(t, covers.CoverPath(outputRoot, "003"), 300)

	list := []stories.Story{
		{ID: "002", Title: "Two", Image: "/images/stories/002/cover.jpg"},
		{ID: "003", Title: "Three"},
		{ID: "004", Title: "Four"},
	}

	rows := storyRows(list, outputRoot, 5000, false)
	require.Len(t, rows, 3)

	assert.True(t, rows[0].HasCover)
	assert.Equal(t, int64(6000), rows[0].CoverBytes)
	assert.False(t, rows[1].HasCover, "undersized cover is not valid")
	assert.False(t, rows[2].HasCover)

	rows = storyRows(list, t.TempDir(), 5000, false)
	for _, r := range rows {
		assert.False(t, r.HasCover, r.ID)
	}
}

// TestStoryRows_Missing verifies fully covered and linked stories are left
// out
func TestStoryRows_Missing(t *testing.T) {
	outputRoot := t.TempDir()
	testsupport.WriteFile(t, covers.CoverPath(outputRoot, "002"), 6000)
	testsupport.WriteFile(t, covers.CoverPath(outputRoot, "003"), 6000)

	list := []stories.Story{
		{ID: "002", Image: "/images/stories/002/cover.jpg"},
		{ID: "003"},
	}

	rows := storyRows(list, outputRoot, 5000, true)
	require.Len(t, rows, 1)
	assert.Equal(t, "003", rows[0].ID)
}
