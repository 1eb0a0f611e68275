package pipeline

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/shotai/internal/fontdb"
	"github.com/MeKo-Tech/shotai/internal/ocr"
	"github.com/MeKo-Tech/shotai/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine scripts OCR output for pipeline tests.
type fakeEngine struct {
	words []ocr.Word
	err   error
}

func (f *fakeEngine) Capabilities() (ocr.Capabilities, error) {
	return ocr.Capabilities{Languages: []string{"jpn", "eng"}}, nil
}

func (f *fakeEngine) Recognize(_ image.Image) ([]ocr.Word, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.words, nil
}

// drawPattern paints dark boxes on a white canvas.
func drawPattern(img *image.NRGBA, boxes ...image.Rectangle) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	for _, box := range boxes {
		for y := box.Min.Y; y < box.Max.Y; y++ {
			for x := box.Min.X; x < box.Max.X; x++ {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
			}
		}
	}
}

// buildTestCatalog writes two synthetic "fonts": one whose sample shows a
// wide solid bar (matching the query glyph), one with thin vertical posts.
func buildTestCatalog(t *testing.T) fontdb.Database {
	t.Helper()
	dir := t.TempDir()

	bar := image.NewNRGBA(image.Rect(0, 0, fontdb.SampleWidth, fontdb.SampleHeight))
	drawPattern(bar, image.Rect(30, 35, 170, 65))
	barPath := filepath.Join(dir, "BarGothic", "sample_0.png")
	require.NoError(t, utils.SavePNG(bar, barPath))

	posts := image.NewNRGBA(image.Rect(0, 0, fontdb.SampleWidth, fontdb.SampleHeight))
	drawPattern(posts, image.Rect(20, 10, 30, 90), image.Rect(170, 10, 180, 90))
	postsPath := filepath.Join(dir, "PostMincho", "sample_0.png")
	require.NoError(t, utils.SavePNG(posts, postsPath))

	return fontdb.Database{
		"BarGothic":  {Path: "/fonts/BarGothic.ttf", Samples: []string{barPath}},
		"PostMincho": {Path: "/fonts/PostMincho.ttf", Samples: []string{postsPath}},
	}
}

// writeQueryImage writes an image whose central region contains the wide
// bar glyph, and returns its path plus the region covering the bar.
func writeQueryImage(t *testing.T) (string, ocr.Word) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 400, 200))
	drawPattern(img, image.Rect(120, 85, 280, 115))
	path := filepath.Join(t.TempDir(), "query.png")
	require.NoError(t, utils.SavePNG(img, path))
	word := ocr.Word{Text: "日本語", Box: image.Rect(110, 75, 290, 125), Confidence: 88}
	return path, word
}

func newDetector(t *testing.T, engine ocr.Engine, db fontdb.Database) *Detector {
	t.Helper()
	d, err := NewBuilder().WithEngine(engine).WithCatalog(db).Build()
	require.NoError(t, err)
	return d
}

func TestDetectRanksMatchingFontFirst(t *testing.T) {
	db := buildTestCatalog(t)
	queryPath, word := writeQueryImage(t)
	d := newDetector(t, &fakeEngine{words: []ocr.Word{word}}, db)

	result, err := d.Detect(queryPath, StrategySSIM)
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	assert.Equal(t, "BarGothic", result.Candidates[0].FontID)
	assert.Greater(t, result.Candidates[0].Score, 0.5)
	assert.LessOrEqual(t, len(result.Candidates), 3)
	require.Len(t, result.Regions, 1)
	assert.Equal(t, "日本語", result.Regions[0].Text)
}

func TestDetectNoTextIsEmptyResult(t *testing.T) {
	db := buildTestCatalog(t)
	queryPath, _ := writeQueryImage(t)
	d := newDetector(t, &fakeEngine{}, db)

	result, err := d.Detect(queryPath, StrategySSIM)
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.Empty(t, result.Regions)
}

func TestDetectAllRegionsDegenerate(t *testing.T) {
	db := buildTestCatalog(t)
	queryPath, _ := writeQueryImage(t)
	// Region entirely outside the image clips to nothing.
	engine := &fakeEngine{words: []ocr.Word{
		{Text: "外側", Box: image.Rect(1000, 1000, 1050, 1020), Confidence: 90},
	}}
	d := newDetector(t, engine, db)

	result, err := d.Detect(queryPath, StrategySSIM)
	require.NoError(t, err)
	require.Len(t, result.Regions, 1)
	assert.Empty(t, result.Candidates)
}

func TestDetectTruncatesToTopThree(t *testing.T) {
	dir := t.TempDir()
	db := fontdb.Database{}
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		img := image.NewNRGBA(image.Rect(0, 0, fontdb.SampleWidth, fontdb.SampleHeight))
		drawPattern(img, image.Rect(30, 35, 170, 65))
		path := filepath.Join(dir, id, "sample_0.png")
		require.NoError(t, utils.SavePNG(img, path))
		db[id] = fontdb.FontEntry{Path: "/fonts/" + id + ".ttf", Samples: []string{path}}
	}

	queryPath, word := writeQueryImage(t)
	d := newDetector(t, &fakeEngine{words: []ocr.Word{word}}, db)

	result, err := d.Detect(queryPath, StrategySSIM)
	require.NoError(t, err)
	assert.Len(t, result.Candidates, 3)
}

func TestDetectImageLoadErrorIsFatal(t *testing.T) {
	d := newDetector(t, &fakeEngine{}, buildTestCatalog(t))
	_, err := d.Detect(filepath.Join(t.TempDir(), "missing.png"), StrategySSIM)
	require.Error(t, err)
	var loadErr *ocr.ImageLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestDetectEngineErrorIsFatal(t *testing.T) {
	queryPath, _ := writeQueryImage(t)
	d := newDetector(t, &fakeEngine{err: assert.AnError}, buildTestCatalog(t))
	_, err := d.Detect(queryPath, StrategySSIM)
	require.Error(t, err)
	var engErr *ocr.EngineError
	assert.ErrorAs(t, err, &engErr)
}

func TestDetectContextCancellation(t *testing.T) {
	db := buildTestCatalog(t)
	queryPath, word := writeQueryImage(t)
	d := newDetector(t, &fakeEngine{words: []ocr.Word{word}}, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.DetectContext(ctx, queryPath, StrategySSIM)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectEmbeddingStrategyUnavailable(t *testing.T) {
	// Catalog without embeddings and no embedder: the embedding strategy
	// yields an empty ranking rather than an error.
	db := buildTestCatalog(t)
	queryPath, word := writeQueryImage(t)
	d := newDetector(t, &fakeEngine{words: []ocr.Word{word}}, db)

	result, err := d.Detect(queryPath, StrategyEmbedding)
	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	assert.NotEmpty(t, result.Regions, "extraction still ran")
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("ssim")
	require.NoError(t, err)
	assert.Equal(t, StrategySSIM, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategySSIM, s)

	s, err = ParseStrategy("embedding")
	require.NoError(t, err)
	assert.Equal(t, StrategyEmbedding, s)

	_, err = ParseStrategy("cnn")
	assert.Error(t, err)
}

func TestBuilderRequiresEngine(t *testing.T) {
	_, err := NewBuilder().WithCatalog(fontdb.Database{}).Build()
	assert.Error(t, err)
}
