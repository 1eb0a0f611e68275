package utils

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ToGray converts an image to 8-bit grayscale. Images that are already
// grayscale are copied unchanged.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		out := image.NewGray(g.Bounds())
		copy(out.Pix, g.Pix)
		return out
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	src := imaging.Grayscale(img)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			// imaging.Grayscale yields NRGBA with R=G=B; take one channel.
			out.Pix[y*out.Stride+x] = src.Pix[y*src.Stride+x*4]
		}
	}
	return out
}

// ResizeGray scales a grayscale image to exactly width x height using
// Lanczos resampling.
func ResizeGray(img *image.Gray, width, height int) (*image.Gray, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "resize", Err: errors.New("input image is nil")}
	}
	if width <= 0 || height <= 0 {
		return nil, &ImageProcessingError{
			Operation: "resize",
			Err:       fmt.Errorf("invalid target dimensions: %dx%d", width, height),
		}
	}
	resized := imaging.Resize(img, width, height, imaging.Lanczos)
	return ToGray(resized), nil
}

// MeanGray returns the arithmetic mean pixel value of a grayscale image,
// or 0 for an empty image.
func MeanGray(img *image.Gray) float64 {
	if img == nil || len(img.Pix) == 0 {
		return 0
	}
	var sum uint64
	for _, p := range img.Pix {
		sum += uint64(p)
	}
	return float64(sum) / float64(len(img.Pix))
}

// CropImageRect crops an image to the given rectangle. The rectangle is
// assumed to be within bounds; callers clamp beforehand.
func CropImageRect(img image.Image, rect image.Rectangle) image.Image {
	return imaging.Crop(img, rect)
}

// ClampRect clamps a rectangle to the given image bounds, preserving
// emptiness when the intersection is degenerate.
func ClampRect(rect, bounds image.Rectangle) image.Rectangle {
	return rect.Intersect(bounds)
}
