package fontdb

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findSystemTTF returns any TrueType font installed on the host, or "".
func findSystemTTF() string {
	var found string
	for _, dir := range []string{"/usr/share/fonts", "/usr/local/share/fonts", "/System/Library/Fonts"} {
		_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil || entry.IsDir() || found != "" {
				return nil
			}
			if strings.EqualFold(filepath.Ext(path), ".ttf") {
				found = path
			}
			return nil
		})
		if found != "" {
			break
		}
	}
	return found
}

func TestFreetypeRendererMissingFile(t *testing.T) {
	r := NewFreetypeRenderer()
	_, err := r.Render(filepath.Join(t.TempDir(), "nope.ttf"), "日本語", 32)
	assert.Error(t, err)
}

func TestFreetypeRendererGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.ttf")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a font"), 0o600))
	r := NewFreetypeRenderer()
	_, err := r.Render(path, "日本語", 32)
	assert.Error(t, err)
}

func TestFreetypeRendererCanvasSize(t *testing.T) {
	fontPath := findSystemTTF()
	if fontPath == "" {
		t.Skip("no TrueType font installed on this host")
	}
	r := NewFreetypeRenderer()
	img, err := r.Render(fontPath, "Aa", 32)
	require.NoError(t, err)
	assert.Equal(t, SampleWidth, img.Bounds().Dx())
	assert.Equal(t, SampleHeight, img.Bounds().Dy())
}

func TestSystemDiscoveryEmptyDirs(t *testing.T) {
	d := &SystemDiscovery{Dirs: []string{t.TempDir()}}
	fonts, err := d.ListJapaneseFonts()
	require.NoError(t, err)
	assert.Empty(t, fonts)
}

func TestSystemDiscoverySkipsNonFonts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("not a font"), 0o600))
	d := &SystemDiscovery{Dirs: []string{dir}}
	fonts, err := d.ListJapaneseFonts()
	require.NoError(t, err)
	assert.Empty(t, fonts, "non-font and unparseable files must be skipped")
}
