package fontdb

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/MeKo-Tech/shotai/internal/utils"
)

// DefaultSampleTexts are the built-in sample phrases. They cover Hiragana,
// Katakana and common Kanji so every generated catalog exercises all three
// scripts regardless of caller input.
var DefaultSampleTexts = []string{
	"あいうえお",
	"こんにちは",
	"日本語",
	"フォント",
	"明朝体",
	"ゴシック",
	"カタカナ",
	"ひらがな",
}

// ErrNoFontsFound is returned when discovery yields no Japanese-capable
// fonts and none were supplied explicitly.
var ErrNoFontsFound = errors.New("no Japanese-capable fonts found; install Japanese fonts or pass font paths explicitly")

// GenerateOptions controls sample generation.
type GenerateOptions struct {
	// FontPaths lists the font files to sample. Empty means: discover
	// installed Japanese-capable fonts.
	FontPaths []string
	// SampleTexts lists the phrases to render. Empty means
	// DefaultSampleTexts.
	SampleTexts []string
	// FontSize overrides the store's configured size when > 0.
	FontSize int
}

// GenerateSamples renders sample images for every font and upserts the
// catalog, replacing each regenerated entry's sample set entirely so no
// stale samples from a previous size or text configuration persist. A font
// that fails to render is skipped with a warning; it does not abort
// generation for the remaining fonts. The updated catalog is saved and
// returned.
func (s *Store) GenerateSamples(opts GenerateOptions) (Database, error) {
	fontPaths := opts.FontPaths
	if len(fontPaths) == 0 {
		discovered, err := s.discovery.ListJapaneseFonts()
		if err != nil {
			return nil, fmt.Errorf("font discovery: %w", err)
		}
		fontPaths = discovered
	}
	if len(fontPaths) == 0 {
		return nil, ErrNoFontsFound
	}

	texts := opts.SampleTexts
	if len(texts) == 0 {
		texts = DefaultSampleTexts
	}
	size := opts.FontSize
	if size <= 0 {
		size = s.config.FontSize
	}

	db, err := s.Load()
	if err != nil {
		return nil, err
	}

	slog.Info("generating font samples", "fonts", len(fontPaths), "texts", len(texts), "size", size)

	for _, fontPath := range fontPaths {
		id := FontID(fontPath)
		samples, err := s.renderFontSamples(fontPath, id, texts, size)
		if err != nil {
			slog.Warn("skipping font", "font", id, "path", fontPath, "error", err)
			continue
		}
		db[id] = FontEntry{Path: fontPath, Samples: samples}
	}

	if err := s.Save(db); err != nil {
		return nil, err
	}
	return db, nil
}

// renderFontSamples renders every phrase for one font. Any failure aborts
// this font only, so a corrupt file never poisons the rest of the run.
func (s *Store) renderFontSamples(fontPath, id string, texts []string, size int) ([]string, error) {
	fontDir := filepath.Join(s.config.SamplesDir, id)
	samples := make([]string, 0, len(texts))
	for i, text := range texts {
		img, err := s.renderer.Render(fontPath, text, size)
		if err != nil {
			return nil, err
		}
		samplePath := filepath.Join(fontDir, fmt.Sprintf("sample_%d.png", i))
		if err := utils.SavePNG(img, samplePath); err != nil {
			return nil, err
		}
		samples = append(samples, samplePath)
	}
	return samples, nil
}
