package ocr

import (
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/shotai/internal/preprocess"
	"github.com/MeKo-Tech/shotai/internal/script"
	"github.com/MeKo-Tech/shotai/internal/utils"
)

// TextRegion is one OCR hit that survived confidence and script filtering.
// Coordinates are pixels in the original image, origin top-left.
type TextRegion struct {
	Text       string `json:"text"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	W          int    `json:"w"`
	H          int    `json:"h"`
	Confidence int    `json:"confidence"` // 0-100
}

// ExtractorConfig holds configuration for the text region extractor.
type ExtractorConfig struct {
	// MinConfidence filters out low-quality tokens. Tokens at or below this
	// value are dropped.
	MinConfidence int
	// RequiredLanguage must be present in the engine's installed language
	// models or extractor construction fails.
	RequiredLanguage string
}

// DefaultExtractorConfig returns the default extraction configuration.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		MinConfidence:    30,
		RequiredLanguage: "jpn",
	}
}

// Extractor runs OCR on preprocessed images and yields Japanese text
// regions.
type Extractor struct {
	config ExtractorConfig
	engine Engine
}

// NewExtractor creates an extractor around the given engine. It probes the
// engine's capabilities once and fails with *UnavailableError when the
// required language model is missing, so a broken installation is caught at
// construction instead of surfacing as empty results per request.
func NewExtractor(engine Engine, config ExtractorConfig) (*Extractor, error) {
	caps, err := engine.Capabilities()
	if err != nil {
		return nil, err
	}
	if !caps.Has(config.RequiredLanguage) {
		return nil, &UnavailableError{Language: config.RequiredLanguage}
	}
	slog.Debug("ocr engine ready", "languages", strings.Join(caps.Languages, ","))
	return &Extractor{config: config, engine: engine}, nil
}

// Extract loads the image at path, preprocesses it for recognition and
// returns every token that is confident enough and contains Japanese
// script. An empty slice is a valid outcome, not an error.
func (e *Extractor) Extract(imagePath string) ([]TextRegion, error) {
	img, meta, err := utils.LoadImage(imagePath)
	if err != nil {
		return nil, &ImageLoadError{Path: imagePath, Err: err}
	}
	slog.Debug("loaded query image", "path", imagePath, "width", meta.Width, "height", meta.Height)

	prepared := preprocess.ForOCR(img)

	words, err := e.engine.Recognize(prepared)
	if err != nil {
		if _, ok := err.(*EngineError); ok {
			return nil, err
		}
		return nil, &EngineError{Err: err}
	}

	regions := make([]TextRegion, 0, len(words))
	for _, w := range words {
		if w.Confidence <= float64(e.config.MinConfidence) {
			continue
		}
		text := strings.TrimSpace(w.Text)
		if text == "" || !script.IsJapanese(script.NormalizeToken(text)) {
			continue
		}
		regions = append(regions, TextRegion{
			Text:       text,
			X:          w.Box.Min.X,
			Y:          w.Box.Min.Y,
			W:          w.Box.Dx(),
			H:          w.Box.Dy(),
			Confidence: int(w.Confidence),
		})
	}
	slog.Debug("ocr extraction complete", "tokens", len(words), "japanese_regions", len(regions))
	return regions, nil
}
