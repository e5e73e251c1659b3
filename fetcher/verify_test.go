package fetcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pevans/coverfetch/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFileSize verifies the strict greater-than threshold
func TestFileSize(t *testing.T) {
	dir := t.TempDir()

	exact := filepath.Join(dir, "exact.jpg")
	testsupport.WriteFile(t, exact, DefaultMinImageBytes)
	size, ok := FileSize(exact, DefaultMinImageBytes)
	assert.Equal(t, int64(DefaultMinImageBytes), size)
	assert.False(t, ok, "a file exactly at the threshold is not valid")

	larger := filepath.Join(dir, "larger.jpg")
	testsupport.WriteFile(t, larger, DefaultMinImageBytes+1)
	_, ok = FileSize(larger, DefaultMinImageBytes)
	assert.True(t, ok)

	size, ok = FileSize(filepath.Join(dir, "missing.jpg"), DefaultMinImageBytes)
	assert.Equal(t, int64(0), size)
	assert.False(t, ok)
}

// TestVerifyImage_ValidPNG verifies dimensions are reported
func TestVerifyImage_ValidPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(path, testsupport.PNG(t, 64, 48), 0o644))

	cfg, err := VerifyImage(path, DefaultMinImageBytes)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)
}

// TestVerifyImage_TooSmall verifies undersized files are rejected
func TestVerifyImage_TooSmall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.jpg")
	testsupport.WriteFile(t, path, 100)

	_, err := VerifyImage(path, DefaultMinImageBytes)

	var contentErr *InvalidContentError
	require.True(t, errors.As(err, &contentErr))
	assert.Contains(t, contentErr.Reason, "100 bytes")
}

// TestVerifyImage_HTMLSavedAsImage verifies an error page with an image
// extension fails decoding
func TestVerifyImage_HTMLSavedAsImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.jpg")
	testsupport.WriteFile(t, path, 8000)

	_, err := VerifyImage(path, DefaultMinImageBytes)

	var contentErr *InvalidContentError
	require.True(t, errors.As(err, &contentErr))
	assert.Contains(t, contentErr.Reason, "not a decodable image")
}
