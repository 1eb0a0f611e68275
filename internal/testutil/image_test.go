package testutil

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTextImage(t *testing.T) {
	config := DefaultTextImageConfig()
	config.Text = "Test"
	img := GenerateTextImage(config)

	require.NotNil(t, img)
	assert.Equal(t, config.Size.Width, img.Bounds().Dx())
	assert.Equal(t, config.Size.Height, img.Bounds().Dy())

	// Text pixels darken the center of the canvas.
	var dark int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			if r < 0x8000 && g < 0x8000 && bb < 0x8000 {
				dark++
			}
		}
	}
	assert.Positive(t, dark, "expected rendered text pixels")
}

func TestSolidImage(t *testing.T) {
	img := SolidImage(10, 5, color.White)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())

	r, g, b, _ := img.At(3, 2).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), g)
	assert.Equal(t, uint32(0xffff), b)
}

func TestWriteAndLoadTextImage(t *testing.T) {
	dir := t.TempDir()
	path := WriteTextImage(t, dir, "sample.png", "Hello")

	assert.True(t, FileExists(path))

	img := LoadImage(t, path)
	assert.Equal(t, MediumSize.Width, img.Bounds().Dx())
}

func TestSaveImageCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "img.png")

	SaveImage(t, SolidImage(4, 4, color.Black), path)
	assert.True(t, FileExists(path))
}
