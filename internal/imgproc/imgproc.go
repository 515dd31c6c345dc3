// Package imgproc normalizes uploaded images: legacy iPhone HEIC and
// non-RGB color modes become plain JPEG, and oversized images are scaled
// down to a viewing width.
package imgproc

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrium/goheif"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".heic": true,
}

// Allowed reports whether the filename carries an accepted extension.
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Normalize re-encodes the file at path in place: decode, downscale to
// maxWidth if wider (preserving aspect ratio), and re-save as JPEG at the
// given quality. A .heic file is rewritten under a .jpeg name and the
// original is removed. Returns the path of the normalized file. The caller
// owns cleanup of the input file when an error is returned.
func Normalize(path string, maxWidth, quality int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	var img image.Image
	if ext == ".heic" {
		img, err = goheif.Decode(f)
	} else {
		img, _, err = image.Decode(f)
	}
	f.Close()
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	outPath := path
	if ext == ".heic" {
		outPath = strings.TrimSuffix(path, ext) + ".jpeg"
	}

	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	if err := imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("encoding image: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if outPath != path {
		os.Remove(path)
	}
	return outPath, nil
}
