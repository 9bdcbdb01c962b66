package debug

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/lumen/internal/engine/gpu/gputest"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
}

func TestCaptureFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshotter(dir, "lumen")
	s.now = fixedClock

	rec := gputest.New()
	// bottom row red, top row blue
	rec.Pixels = []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}

	path, err := s.Capture(rec, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "lumen_2024-03-01_12-30-00.000.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{0, 0, 255, 255}, color.RGBAModel.Convert(img.At(0, 0)))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, color.RGBAModel.Convert(img.At(0, 1)))
}

func TestSaveRejectsBadInput(t *testing.T) {
	s := NewScreenshotter(t.TempDir(), "lumen")

	_, err := s.Save(make([]byte, 3), 1, 1)
	assert.Error(t, err)

	_, err = s.Save(nil, 0, 0)
	assert.Error(t, err)
}
