// Package preprocess prepares raw input images for OCR. The output is a
// binarized, noise-reduced image with dark text on a light background, which
// is what Tesseract and the sample renderer both assume. Preprocessing is an
// OCR aid only; similarity scoring always works on the original pixels.
package preprocess

import (
	"image"
	"math"

	"github.com/MeKo-Tech/shotai/internal/utils"
	"github.com/disintegration/imaging"
)

const (
	// blurSigma approximates a 3x3 Gaussian kernel.
	blurSigma = 0.8

	// Adaptive threshold parameters: Gaussian-weighted mean over an 11x11
	// neighborhood minus a constant offset.
	thresholdWindow = 11
	thresholdOffset = 2

	// polarityMidpoint decides whether a binary image is mostly dark.
	polarityMidpoint = 127
)

// ForOCR transforms an image into a binarized, polarity-normalized 3-channel
// image with the same pixel dimensions. It never fails; pathological input
// degrades OCR accuracy rather than producing an error.
func ForOCR(img image.Image) *image.NRGBA {
	gray := utils.ToGray(img)
	if len(gray.Pix) == 0 {
		return imaging.Clone(img)
	}

	blurred := utils.ToGray(imaging.Blur(gray, blurSigma))
	binary := adaptiveThreshold(blurred, thresholdWindow, thresholdOffset)

	// Most text is dark on light. If the binary image is mostly dark the
	// polarity is flipped so downstream consumers see the expected layout.
	if utils.MeanGray(binary) < polarityMidpoint {
		invert(binary)
	}

	return replicateChannels(binary)
}

// adaptiveThreshold binarizes a grayscale image against a local
// Gaussian-weighted mean. A pixel becomes white when it exceeds the local
// mean minus offset, black otherwise. This copes with uneven lighting far
// better than a single global threshold.
func adaptiveThreshold(img *image.Gray, window, offset int) *image.Gray {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	kernel := gaussianKernel(window)
	surface := separableConvolve(img, kernel)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*img.Stride + x
			thresh := surface[y*w+x] - float64(offset)
			if float64(img.Pix[idx]) > thresh {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// gaussianKernel builds a normalized 1D Gaussian kernel of the given odd
// width, with sigma derived from the width the same way OpenCV derives it
// from a block size.
func gaussianKernel(width int) []float64 {
	if width%2 == 0 {
		width++
	}
	sigma := 0.3*(float64(width-1)*0.5-1) + 0.8
	half := width / 2
	kernel := make([]float64, width)
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// separableConvolve applies a 1D kernel horizontally then vertically with
// clamped borders, returning the smoothed surface as float64 row-major.
func separableConvolve(img *image.Gray, kernel []float64) []float64 {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	half := len(kernel) / 2

	horizontal := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				sx := clamp(x+k-half, 0, w-1)
				acc += kv * float64(img.Pix[y*img.Stride+sx])
			}
			horizontal[y*w+x] = acc
		}
	}

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, kv := range kernel {
				sy := clamp(y+k-half, 0, h-1)
				acc += kv * horizontal[sy*w+x]
			}
			out[y*w+x] = acc
		}
	}
	return out
}

func invert(img *image.Gray) {
	for i, p := range img.Pix {
		img.Pix[i] = 255 - p
	}
}

// replicateChannels expands a grayscale image back to 3 channels so every
// pipeline stage sees a consistent color layout.
func replicateChannels(img *image.Gray) *image.NRGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := img.Pix[y*img.Stride+x]
			i := y*out.Stride + x*4
			out.Pix[i] = v
			out.Pix[i+1] = v
			out.Pix[i+2] = v
			out.Pix[i+3] = 255
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
