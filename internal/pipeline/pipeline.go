// Package pipeline composes OCR extraction, cropping and similarity scoring
// into the end-to-end font detection flow.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/shotai/internal/fontdb"
	"github.com/MeKo-Tech/shotai/internal/ocr"
	"github.com/MeKo-Tech/shotai/internal/similarity"
)

// Strategy selects the similarity scoring implementation.
type Strategy string

const (
	// StrategySSIM is the default pixel-structural comparison.
	StrategySSIM Strategy = "ssim"
	// StrategyEmbedding uses the optional learned-embedding comparison.
	StrategyEmbedding Strategy = "embedding"
)

// ParseStrategy validates a strategy name from config or CLI input.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategySSIM, StrategyEmbedding:
		return Strategy(s), nil
	case "":
		return StrategySSIM, nil
	}
	return "", fmt.Errorf("unknown similarity strategy %q (want %q or %q)", s, StrategySSIM, StrategyEmbedding)
}

// Config holds configuration for the font detector and its components.
type Config struct {
	Extractor     ocr.ExtractorConfig
	SSIM          similarity.SSIMConfig
	TopCandidates int // ranked candidates returned per detection
	TopK          int // embedding neighbors considered per crop
}

// DefaultConfig returns a default detector config with component defaults.
func DefaultConfig() Config {
	return Config{
		Extractor:     ocr.DefaultExtractorConfig(),
		SSIM:          similarity.DefaultSSIMConfig(),
		TopCandidates: 3,
		TopK:          similarity.DefaultTopK,
	}
}

// Detector is the orchestrator. It owns the catalog for its lifetime;
// concurrent detections may share one Detector as long as no sample
// regeneration is in flight.
type Detector struct {
	config    Config
	extractor *ocr.Extractor
	ssim      *similarity.SSIMStrategy
	embedding *similarity.EmbeddingStrategy
	catalog   fontdb.Database
}

// Builder constructs a Detector with fluent configuration.
type Builder struct {
	cfg      Config
	engine   ocr.Engine
	catalog  fontdb.Database
	embedder similarity.Embedder
}

// NewBuilder creates a new detector builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	if cfg.TopCandidates <= 0 {
		cfg.TopCandidates = DefaultConfig().TopCandidates
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	b.cfg = cfg
	return b
}

// WithEngine sets the OCR engine collaborator.
func (b *Builder) WithEngine(engine ocr.Engine) *Builder {
	b.engine = engine
	return b
}

// WithCatalog injects the loaded font sample catalog.
func (b *Builder) WithCatalog(db fontdb.Database) *Builder {
	b.catalog = db
	return b
}

// WithEmbedder sets the optional embedding collaborator. Leaving it unset
// simply makes the embedding strategy return empty results.
func (b *Builder) WithEmbedder(embedder similarity.Embedder) *Builder {
	b.embedder = embedder
	return b
}

// Build validates the configuration and constructs the detector. The OCR
// capability probe runs here, so a missing Japanese language pack fails
// construction once instead of every request.
func (b *Builder) Build() (*Detector, error) {
	if b.engine == nil {
		return nil, errors.New("pipeline: ocr engine is required")
	}
	if b.catalog == nil {
		b.catalog = fontdb.Database{}
	}

	extractor, err := ocr.NewExtractor(b.engine, b.cfg.Extractor)
	if err != nil {
		return nil, err
	}

	d := &Detector{
		config:    b.cfg,
		extractor: extractor,
		ssim:      similarity.NewSSIMStrategy(b.catalog, b.cfg.SSIM),
		embedding: similarity.NewEmbeddingStrategy(b.catalog, b.embedder, b.cfg.TopK),
		catalog:   b.catalog,
	}
	slog.Debug("detector built", "fonts", len(b.catalog), "embedding_available", d.embedding.Available())
	return d, nil
}

// CatalogSize returns the number of fonts in the injected catalog.
func (d *Detector) CatalogSize() int { return len(d.catalog) }
