// Package fontdb maintains the catalog of reference font samples that
// detection queries are scored against. The catalog maps a font identifier
// (the font file's base name without extension) to its source file and the
// rendered sample images, persisted as a single JSON file that is rewritten
// wholesale on every save.
package fontdb

import (
	"path/filepath"
	"sort"
	"strings"
)

// FontEntry is one catalog record.
type FontEntry struct {
	// Path is the source font file.
	Path string `json:"path"`
	// Samples are the rendered sample image paths, one per sample phrase.
	Samples []string `json:"samples"`
	// Embeddings optionally holds one precomputed feature vector per
	// sample, in sample order. Only present when the embedding strategy
	// generated them.
	Embeddings [][]float32 `json:"embeddings,omitempty"`
}

// Database is the in-memory catalog, keyed by font identifier.
type Database map[string]FontEntry

// FontIDs returns the catalog keys in sorted order. Detection uses this
// ordering to make tie-breaks deterministic.
func (db Database) FontIDs() []string {
	ids := make([]string, 0, len(db))
	for id := range db {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FontID derives the catalog key for a font file: the base name without its
// extension. Deterministic so regeneration always hits the same entry.
func FontID(fontPath string) string {
	base := filepath.Base(fontPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
