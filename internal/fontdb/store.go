package fontdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// CatalogFileName is the persisted catalog file inside the samples
// directory.
const CatalogFileName = "font_database.json"

// Config holds configuration for the font sample store.
type Config struct {
	// SamplesDir is the root directory for per-font sample images and the
	// catalog file.
	SamplesDir string
	// FontSize used when rendering samples.
	FontSize int
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		SamplesDir: "font_samples",
		FontSize:   32,
	}
}

// Store owns the samples directory and the persisted catalog. Reads are safe
// for concurrent use; GenerateSamples mutates the catalog and the backing
// files and must not run concurrently with itself or with Save.
type Store struct {
	config    Config
	renderer  Renderer
	discovery Discovery
}

// NewStore creates a store with the given collaborators. A nil renderer or
// discovery falls back to the freetype renderer and the system font scanner.
func NewStore(config Config, renderer Renderer, discovery Discovery) *Store {
	if config.SamplesDir == "" {
		config.SamplesDir = DefaultConfig().SamplesDir
	}
	if config.FontSize <= 0 {
		config.FontSize = DefaultConfig().FontSize
	}
	if renderer == nil {
		renderer = NewFreetypeRenderer()
	}
	if discovery == nil {
		discovery = NewSystemDiscovery()
	}
	return &Store{config: config, renderer: renderer, discovery: discovery}
}

// SamplesDir returns the root directory this store writes samples under.
func (s *Store) SamplesDir() string { return s.config.SamplesDir }

func (s *Store) catalogPath() string {
	return filepath.Join(s.config.SamplesDir, CatalogFileName)
}

// Load deserializes the catalog from disk. A missing catalog file yields an
// empty catalog; first run is not an error.
func (s *Store) Load() (Database, error) {
	data, err := os.ReadFile(s.catalogPath()) //nolint:gosec // G304: catalog path is store-owned
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Database{}, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var db Database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", s.catalogPath(), err)
	}
	if db == nil {
		db = Database{}
	}
	return db, nil
}

// Save serializes the catalog, rewriting the whole file. Appropriate at
// catalog sizes of tens to low hundreds of fonts.
func (s *Store) Save(db Database) error {
	if err := os.MkdirAll(s.config.SamplesDir, 0o750); err != nil {
		return fmt.Errorf("create samples dir: %w", err)
	}
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := os.WriteFile(s.catalogPath(), data, 0o600); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	slog.Debug("catalog saved", "path", s.catalogPath(), "fonts", len(db))
	return nil
}
