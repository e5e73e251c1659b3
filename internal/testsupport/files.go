// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

// PNG returns an encoded w x h PNG filled with deterministic noise. Noise does
// not compress, so a 64x64 image is comfortably above the minimum cover size.
func PNG(t testing.TB, w, h int) []byte {
	t.Helper()

	rng := rand.New(rand.NewSource(int64(w*31 + h)))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes size bytes of a repeating pattern to path, creating parent
// directories as needed.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	data := bytes.Repeat([]byte("x"), size)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
