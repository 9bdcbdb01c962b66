// Package debug provides development helpers for the frame loop.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/Faultbox/lumen/internal/engine/gpu"
)

// Screenshotter writes framebuffer captures as PNG files.
type Screenshotter struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewScreenshotter creates a capturer writing <dir>/<prefix>_<timestamp>.png.
func NewScreenshotter(dir, prefix string) *Screenshotter {
	return &Screenshotter{dir: dir, prefix: prefix, now: time.Now}
}

// Capture reads the framebuffer from dev and saves it.
func (s *Screenshotter) Capture(dev gpu.FrameDevice, width, height int) (string, error) {
	return s.Save(dev.ReadPixels(width, height), width, height)
}

// Save writes RGBA pixels given bottom row first, as OpenGL returns them.
func (s *Screenshotter) Save(pixels []byte, width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid screenshot size %dx%d", width, height)
	}
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	filename := filepath.Join(s.dir, fmt.Sprintf("%s_%s.png", s.prefix, s.now().Format("2006-01-02_15-04-05.000")))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, file.Close()
}
