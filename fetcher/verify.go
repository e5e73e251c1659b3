package fetcher

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

// DefaultMinImageBytes is the size a cover file must exceed to count as a real
// image rather than a saved error page.
const DefaultMinImageBytes = 5000

// FileSize returns the size of path and whether it is strictly larger than
// minBytes. A missing file reports (0, false).
func FileSize(path string, minBytes int64) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), info.Size() > minBytes
}

// VerifyImage checks that path is above minBytes and that its header decodes
// as JPEG, PNG, GIF or WebP. It returns the image dimensions.
func VerifyImage(path string, minBytes int64) (image.Config, error) {
	size, ok := FileSize(path, minBytes)
	if !ok {
		return image.Config{}, &InvalidContentError{
			URL:    path,
			Reason: fmt.Sprintf("file is %d bytes, need more than %d", size, minBytes),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, &FileSystemError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, &InvalidContentError{
			URL:    path,
			Reason: fmt.Sprintf("not a decodable image: %v", err),
		}
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return image.Config{}, &InvalidContentError{
			URL:    path,
			Reason: fmt.Sprintf("%s image has zero dimensions", format),
		}
	}

	return cfg, nil
}
