package ocr

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	return img
}

func TestCropRegionsPaddingAndClipping(t *testing.T) {
	img := solidImage(200, 100)
	regions := []TextRegion{
		{Text: "中央", X: 50, Y: 40, W: 60, H: 20, Confidence: 90},
		{Text: "端", X: 0, Y: 0, W: 30, H: 15, Confidence: 80},
	}

	crops := CropRegions(img, regions)
	require.Len(t, crops, 2)

	// Interior region gets full padding on all sides.
	assert.Equal(t, 60+2*CropPadding, crops[0].Bounds().Dx())
	assert.Equal(t, 20+2*CropPadding, crops[0].Bounds().Dy())

	// Corner region is clipped at the image origin.
	assert.Equal(t, 30+CropPadding, crops[1].Bounds().Dx())
	assert.Equal(t, 15+CropPadding, crops[1].Bounds().Dy())
}

func TestCropRegionsFullImageRegion(t *testing.T) {
	img := solidImage(120, 60)
	regions := []TextRegion{{Text: "全画面", X: 0, Y: 0, W: 120, H: 60, Confidence: 70}}

	crops := CropRegions(img, regions)
	require.Len(t, crops, 1)
	assert.Equal(t, 120, crops[0].Bounds().Dx())
	assert.Equal(t, 60, crops[0].Bounds().Dy())
}

func TestCropRegionsDropsDegenerate(t *testing.T) {
	img := solidImage(100, 50)
	regions := []TextRegion{
		{Text: "外", X: 500, Y: 500, W: 10, H: 10, Confidence: 60},
		{Text: "可", X: 10, Y: 10, W: 20, H: 10, Confidence: 60},
	}
	crops := CropRegions(img, regions)
	require.Len(t, crops, 1, "fully out-of-bounds region must be dropped")
	assert.Equal(t, 20+2*CropPadding, crops[0].Bounds().Dx())
}

func TestCropRegionsOrderMatchesInput(t *testing.T) {
	img := solidImage(300, 100)
	regions := []TextRegion{
		{Text: "一", X: 200, Y: 20, W: 40, H: 20, Confidence: 50},
		{Text: "二", X: 20, Y: 20, W: 80, H: 20, Confidence: 50},
	}
	crops := CropRegions(img, regions)
	require.Len(t, crops, 2)
	assert.Equal(t, 40+2*CropPadding, crops[0].Bounds().Dx())
	assert.Equal(t, 80+2*CropPadding, crops[1].Bounds().Dx())
}

func TestCropRegionsEmptyInputs(t *testing.T) {
	assert.Nil(t, CropRegions(nil, []TextRegion{{X: 0, Y: 0, W: 10, H: 10}}))
	assert.Nil(t, CropRegions(solidImage(10, 10), nil))
}
