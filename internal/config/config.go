package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/shotai/internal/fontdb"
	"github.com/MeKo-Tech/shotai/internal/ocr"
	"github.com/MeKo-Tech/shotai/internal/pipeline"
	"github.com/MeKo-Tech/shotai/internal/similarity"
)

// Config represents the complete configuration for the shotai application.
// It supports loading from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	SamplesDir string `mapstructure:"samples_dir" yaml:"samples_dir" json:"samples_dir"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose    bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Text extraction settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Detection and ranking settings
	Detection DetectionConfig `mapstructure:"detection" yaml:"detection" json:"detection"`

	// SSIM comparison settings
	SSIM SSIMConfig `mapstructure:"ssim" yaml:"ssim" json:"ssim"`

	// Embedding model settings
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding" json:"embedding"`

	// Sample generation settings
	Generate GenerateConfig `mapstructure:"generate" yaml:"generate" json:"generate"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
}

// OCRConfig contains text extraction settings.
type OCRConfig struct {
	Languages     []string `mapstructure:"languages" yaml:"languages" json:"languages"`
	MinConfidence int      `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
}

// DetectionConfig contains ranking settings.
type DetectionConfig struct {
	Strategy      string `mapstructure:"strategy" yaml:"strategy" json:"strategy"`
	TopCandidates int    `mapstructure:"top_candidates" yaml:"top_candidates" json:"top_candidates"`
	TopK          int    `mapstructure:"top_k" yaml:"top_k" json:"top_k"`
}

// SSIMConfig contains structural comparison settings.
type SSIMConfig struct {
	CompareWidth  int `mapstructure:"compare_width" yaml:"compare_width" json:"compare_width"`
	CompareHeight int `mapstructure:"compare_height" yaml:"compare_height" json:"compare_height"`
}

// EmbeddingConfig contains embedding model settings.
type EmbeddingConfig struct {
	ModelPath string `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	InputSize int    `mapstructure:"input_size" yaml:"input_size" json:"input_size"`
}

// GenerateConfig contains sample generation settings.
type GenerateConfig struct {
	FontSize int      `mapstructure:"font_size" yaml:"font_size" json:"font_size"`
	FontDirs []string `mapstructure:"font_dirs" yaml:"font_dirs" json:"font_dirs"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	store := fontdb.DefaultConfig()
	extractor := ocr.DefaultExtractorConfig()
	ssim := similarity.DefaultSSIMConfig()
	embedder := similarity.DefaultEmbedderConfig()
	pipe := pipeline.DefaultConfig()

	return Config{
		SamplesDir: store.SamplesDir,
		LogLevel:   "info",
		Verbose:    false,
		OCR: OCRConfig{
			Languages:     ocr.DefaultTesseractConfig().Languages,
			MinConfidence: extractor.MinConfidence,
		},
		Detection: DetectionConfig{
			Strategy:      string(pipeline.StrategySSIM),
			TopCandidates: pipe.TopCandidates,
			TopK:          pipe.TopK,
		},
		SSIM: SSIMConfig{
			CompareWidth:  ssim.CompareWidth,
			CompareHeight: ssim.CompareHeight,
		},
		Embedding: EmbeddingConfig{
			ModelPath: embedder.ModelPath,
			InputSize: embedder.InputSize,
		},
		Generate: GenerateConfig{
			FontSize: store.FontSize,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if _, err := pipeline.ParseStrategy(c.Detection.Strategy); err != nil {
		return err
	}

	if c.OCR.MinConfidence < 0 || c.OCR.MinConfidence > 100 {
		return fmt.Errorf("invalid ocr.min_confidence: %d (must be between 0 and 100)", c.OCR.MinConfidence)
	}
	if len(c.OCR.Languages) == 0 {
		return fmt.Errorf("ocr.languages must not be empty")
	}

	if c.Detection.TopCandidates <= 0 {
		return fmt.Errorf("invalid detection.top_candidates: %d (must be positive)", c.Detection.TopCandidates)
	}
	if c.Detection.TopK <= 0 {
		return fmt.Errorf("invalid detection.top_k: %d (must be positive)", c.Detection.TopK)
	}

	if c.SSIM.CompareWidth <= 0 || c.SSIM.CompareHeight <= 0 {
		return fmt.Errorf("invalid ssim comparison size: %dx%d (must be positive)",
			c.SSIM.CompareWidth, c.SSIM.CompareHeight)
	}

	if c.Embedding.InputSize <= 0 {
		return fmt.Errorf("invalid embedding.input_size: %d (must be positive)", c.Embedding.InputSize)
	}

	if c.Generate.FontSize <= 0 {
		return fmt.Errorf("invalid generate.font_size: %d (must be positive)", c.Generate.FontSize)
	}

	return nil
}

// ToPipelineConfig converts the config to the internal pipeline configuration format.
func (c *Config) ToPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Extractor.MinConfidence = c.OCR.MinConfidence
	cfg.SSIM.CompareWidth = c.SSIM.CompareWidth
	cfg.SSIM.CompareHeight = c.SSIM.CompareHeight
	cfg.TopCandidates = c.Detection.TopCandidates
	cfg.TopK = c.Detection.TopK
	return cfg
}

// ToTesseractConfig converts to ocr.TesseractConfig.
func (c *Config) ToTesseractConfig() ocr.TesseractConfig {
	cfg := ocr.DefaultTesseractConfig()
	if len(c.OCR.Languages) > 0 {
		cfg.Languages = c.OCR.Languages
	}
	return cfg
}

// ToStoreConfig converts to fontdb.Config.
func (c *Config) ToStoreConfig() fontdb.Config {
	cfg := fontdb.DefaultConfig()
	if c.SamplesDir != "" {
		cfg.SamplesDir = c.SamplesDir
	}
	if c.Generate.FontSize > 0 {
		cfg.FontSize = c.Generate.FontSize
	}
	return cfg
}

// ToEmbedderConfig converts to similarity.EmbedderConfig.
func (c *Config) ToEmbedderConfig() similarity.EmbedderConfig {
	cfg := similarity.DefaultEmbedderConfig()
	if c.Embedding.ModelPath != "" {
		cfg.ModelPath = c.Embedding.ModelPath
	}
	if c.Embedding.InputSize > 0 {
		cfg.InputSize = c.Embedding.InputSize
	}
	return cfg
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
