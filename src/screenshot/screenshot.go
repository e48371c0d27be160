package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kbinani/screenshot"

	"screen-capper/src/geometry"
)

// ErrIO marks failures writing a capture to disk. The caller's session and
// selection stay intact so the user can fix the path and retry.
var ErrIO = errors.New("capture i/o error")

// Backend grabs pixels for a global rectangle and persists them.
type Backend interface {
	CaptureRegion(r geometry.Rect) (*image.RGBA, error)
	SaveImage(img image.Image, path string) error
}

// Screen is the kbinani/screenshot backed implementation. It stitches
// rectangles that span several monitors.
type Screen struct{}

// CaptureRegion grabs a specific region of the virtual screen.
func (Screen) CaptureRegion(r geometry.Rect) (*image.RGBA, error) {
	if r.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width, r.Height)
	}
	if screenshot.NumActiveDisplays() == 0 {
		return nil, geometry.ErrNoDisplaysAvailable
	}
	img, err := screenshot.CaptureRect(r.Image())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region %s: %w", r, err)
	}
	return img, nil
}

// SaveImage writes img to path as PNG.
func (Screen) SaveImage(img image.Image, path string) error {
	return SavePNG(img, path)
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// SavePNG encodes img and writes it to path via a temp file in the same
// directory, so a failed write never leaves a truncated capture behind.
func SavePNG(img image.Image, path string) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrIO, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".capture-*.png")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %v", ErrIO, path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrIO, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: rename to %s: %v", ErrIO, path, err)
	}
	return nil
}
