// Package similarity scores cropped query images against the font sample
// catalog. Two interchangeable strategies exist: pixel-structural comparison
// (SSIM) and an optional learned-embedding comparison backed by an ONNX
// model.
package similarity

import (
	"errors"
	"image"
)

// SSIM constants for 8-bit images (standard values from the original
// Wang et al. formulation).
const (
	ssimK1 = 0.01
	ssimK2 = 0.03
	ssimL  = 255.0
)

// SSIM computes the structural similarity index between two grayscale
// images of identical dimensions using global luminance, contrast and
// structure statistics. Identical images score 1.0.
func SSIM(a, b *image.Gray) (float64, error) {
	if a == nil || b == nil {
		return 0, errors.New("ssim: nil image")
	}
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return 0, errors.New("ssim: image dimensions differ")
	}
	n := a.Bounds().Dx() * a.Bounds().Dy()
	if n == 0 {
		return 0, errors.New("ssim: empty image")
	}

	meanA := meanPix(a)
	meanB := meanPix(b)

	var varA, varB, covar float64
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			da := float64(a.Pix[y*a.Stride+x]) - meanA
			db := float64(b.Pix[y*b.Stride+x]) - meanB
			varA += da * da
			varB += db * db
			covar += da * db
		}
	}
	nf := float64(n)
	varA /= nf
	varB /= nf
	covar /= nf

	c1 := (ssimK1 * ssimL) * (ssimK1 * ssimL)
	c2 := (ssimK2 * ssimL) * (ssimK2 * ssimL)

	numerator := (2*meanA*meanB + c1) * (2*covar + c2)
	denominator := (meanA*meanA + meanB*meanB + c1) * (varA + varB + c2)
	return numerator / denominator, nil
}

func meanPix(img *image.Gray) float64 {
	var sum float64
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum += float64(img.Pix[y*img.Stride+x])
		}
	}
	return sum / float64(w*h)
}
