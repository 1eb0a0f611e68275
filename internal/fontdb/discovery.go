package fontdb

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/freetype"
)

// Discovery is the font discovery collaborator: it lists installed fonts
// that can render Japanese text.
type Discovery interface {
	ListJapaneseFonts() ([]string, error)
}

// SystemDiscovery walks the usual font installation directories and keeps
// TrueType/OpenType files with Japanese glyph coverage.
type SystemDiscovery struct {
	// Dirs overrides the scanned directories; empty means platform
	// defaults.
	Dirs []string
}

// NewSystemDiscovery returns a discovery over the platform font directories.
func NewSystemDiscovery() *SystemDiscovery { return &SystemDiscovery{} }

func (d *SystemDiscovery) dirs() []string {
	if len(d.Dirs) > 0 {
		return d.Dirs
	}
	dirs := []string{
		"/usr/share/fonts",
		"/usr/local/share/fonts",
		"/System/Library/Fonts",
		"/Library/Fonts",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".fonts"),
			filepath.Join(home, ".local", "share", "fonts"),
			filepath.Join(home, "Library", "Fonts"),
		)
	}
	return dirs
}

// ListJapaneseFonts scans the font directories and returns every font file
// that parses and probes positive for Japanese glyphs. Unreadable or
// unparseable files are skipped quietly; fonts are a messy corner of most
// systems.
func (d *SystemDiscovery) ListJapaneseFonts() ([]string, error) {
	var fonts []string
	for _, dir := range d.dirs() {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil || entry.IsDir() {
				return nil //nolint:nilerr // unreadable subtrees are skipped, not fatal
			}
			if !isFontFile(path) {
				return nil
			}
			if hasJapaneseGlyphs(path) {
				fonts = append(fonts, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slog.Debug("font discovery complete", "found", len(fonts))
	return fonts, nil
}

func isFontFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}

func hasJapaneseGlyphs(path string) bool {
	data, err := os.ReadFile(path) //nolint:gosec // G304: scanning well-known font directories
	if err != nil {
		return false
	}
	ttf, err := freetype.ParseFont(data)
	if err != nil {
		return false
	}
	return SupportsJapanese(ttf)
}
