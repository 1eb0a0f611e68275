// Package ocr extracts Japanese text regions from raster images. The actual
// character recognition is delegated to an Engine collaborator; the bundled
// implementation is backed by Tesseract via gosseract.
package ocr

import (
	"image"
)

// Word is a single recognized token with its bounding box and the engine's
// confidence in percent (0-100).
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Capabilities describes what the OCR engine installation supports.
type Capabilities struct {
	Languages []string
}

// Has reports whether the given language model is installed.
func (c Capabilities) Has(lang string) bool {
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Engine is the recognition collaborator. Implementations must be safe to
// call sequentially; the pipeline never invokes Recognize concurrently on
// one Engine.
type Engine interface {
	// Capabilities queries the installed language models. Called once at
	// extractor construction so a misconfigured installation fails fast.
	Capabilities() (Capabilities, error)

	// Recognize runs word-level recognition on the given image and returns
	// every token the engine produced, unfiltered.
	Recognize(img image.Image) ([]Word, error)
}
