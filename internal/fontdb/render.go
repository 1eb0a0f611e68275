package fontdb

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Sample canvas dimensions. Every sample image has this fixed size; the
// scorer later resizes both query and sample to a common comparison size.
const (
	SampleWidth  = 200
	SampleHeight = 100
)

// Renderer is the font rendering collaborator: it rasterizes a sample
// phrase with a given font file onto the fixed sample canvas.
type Renderer interface {
	Render(fontPath, text string, size int) (image.Image, error)
}

// FreetypeRenderer renders samples with the freetype rasterizer.
type FreetypeRenderer struct{}

// NewFreetypeRenderer returns the default renderer.
func NewFreetypeRenderer() *FreetypeRenderer { return &FreetypeRenderer{} }

// Render draws text centered on a white canvas in black at the given point
// size. It fails when the font file cannot be read or parsed; callers treat
// that as a per-font soft failure.
func (r *FreetypeRenderer) Render(fontPath, text string, size int) (image.Image, error) {
	data, err := os.ReadFile(fontPath) //nolint:gosec // G304: font path comes from discovery or operator input
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", fontPath, err)
	}
	ttf, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", fontPath, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, SampleWidth, SampleHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer func() { _ = face.Close() }()

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
	}

	textWidth := drawer.MeasureString(text).Ceil()
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()

	x := (SampleWidth - textWidth) / 2
	baseline := (SampleHeight + ascent - descent) / 2
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)

	return img, nil
}

// SupportsJapanese reports whether the parsed font carries glyphs for a few
// representative Japanese code points. Fonts with no kana and no common
// kanji coverage are useless as catalog entries.
func SupportsJapanese(ttf *truetype.Font) bool {
	probes := []rune{'あ', 'ア', '日'}
	for _, r := range probes {
		if ttf.Index(r) != 0 {
			return true
		}
	}
	return false
}
