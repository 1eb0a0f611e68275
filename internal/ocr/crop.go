package ocr

import (
	"image"
	"log/slog"

	"github.com/MeKo-Tech/shotai/internal/utils"
)

// CropPadding is the number of pixels added on every side of a text region
// before cropping, to keep glyph edges and a little context in the crop.
const CropPadding = 10

// CropRegions extracts padded sub-images from the original image for each
// text region. The original pixels are used deliberately: preprocessing is
// an OCR aid and must not contaminate the visual sample used for similarity
// comparison. Regions that clip to zero area are dropped silently; output
// order matches input order.
func CropRegions(img image.Image, regions []TextRegion) []image.Image {
	if img == nil || len(regions) == 0 {
		return nil
	}
	bounds := img.Bounds()
	crops := make([]image.Image, 0, len(regions))
	for _, r := range regions {
		rect := image.Rect(
			r.X-CropPadding,
			r.Y-CropPadding,
			r.X+r.W+CropPadding,
			r.Y+r.H+CropPadding,
		)
		clipped := utils.ClampRect(rect, bounds)
		if clipped.Empty() {
			slog.Debug("dropping degenerate text region", "text", r.Text, "x", r.X, "y", r.Y, "w", r.W, "h", r.H)
			continue
		}
		crops = append(crops, utils.CropImageRect(img, clipped))
	}
	return crops
}

// CropRegionsFromFile reloads the original, non-preprocessed image at path
// and crops the given regions out of it.
func CropRegionsFromFile(imagePath string, regions []TextRegion) ([]image.Image, error) {
	img, _, err := utils.LoadImage(imagePath)
	if err != nil {
		return nil, &ImageLoadError{Path: imagePath, Err: err}
	}
	return CropRegions(img, regions), nil
}
