package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractConfig holds configuration for the Tesseract-backed engine.
type TesseractConfig struct {
	// Languages passed to tesseract, first entry is the primary script.
	Languages []string
	// PageSegMode controls layout analysis. The default assumes a single
	// uniform block of text, which empirically maximizes recall on UI
	// screenshots and design mockups.
	PageSegMode gosseract.PageSegMode
}

// DefaultTesseractConfig returns the configuration used for Japanese
// font detection: combined Japanese+Latin recognition on a single block.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		Languages:   []string{"jpn", "eng"},
		PageSegMode: gosseract.PSM_SINGLE_BLOCK,
	}
}

// Tesseract is an Engine backed by the system tesseract installation.
type Tesseract struct {
	config TesseractConfig
}

// NewTesseract creates a Tesseract engine with the given configuration.
func NewTesseract(config TesseractConfig) *Tesseract {
	if len(config.Languages) == 0 {
		config.Languages = DefaultTesseractConfig().Languages
	}
	return &Tesseract{config: config}
}

// Capabilities lists the language models the local tesseract installation
// provides.
func (t *Tesseract) Capabilities() (Capabilities, error) {
	langs, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return Capabilities{}, &EngineError{Err: fmt.Errorf("query languages: %w", err)}
	}
	return Capabilities{Languages: langs}, nil
}

// Recognize runs word-level recognition and returns raw tokens with
// bounding boxes and confidences.
func (t *Tesseract) Recognize(img image.Image) ([]Word, error) {
	if img == nil {
		return nil, &EngineError{Err: fmt.Errorf("input image is nil")}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &EngineError{Err: fmt.Errorf("encode image: %w", err)}
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(t.config.Languages...); err != nil {
		return nil, &EngineError{Err: fmt.Errorf("set language %s: %w", strings.Join(t.config.Languages, "+"), err)}
	}
	if err := client.SetPageSegMode(t.config.PageSegMode); err != nil {
		return nil, &EngineError{Err: fmt.Errorf("set page segmentation mode: %w", err)}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, &EngineError{Err: fmt.Errorf("set image: %w", err)}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, &EngineError{Err: err}
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{
			Text:       b.Word,
			Box:        b.Box,
			Confidence: b.Confidence,
		})
	}
	return words, nil
}
