package similarity

import (
	"image"
	"testing"

	"github.com/MeKo-Tech/shotai/internal/fontdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexQueryRanksByCosine(t *testing.T) {
	ix := NewIndex()
	ix.Add("exact", []float32{1, 0, 0})
	ix.Add("close", []float32{0.9, 0.1, 0})
	ix.Add("orthogonal", []float32{0, 1, 0})

	scores := ix.Query([]float32{1, 0, 0}, 10)
	require.Len(t, scores, 3)
	assert.Equal(t, "exact", scores[0].FontID)
	assert.InDelta(t, 1.0, scores[0].Score, 1e-6)
	assert.Equal(t, "close", scores[1].FontID)
	assert.Equal(t, "orthogonal", scores[2].FontID)
	assert.InDelta(t, 0.0, scores[2].Score, 1e-6)
}

func TestIndexQueryTopK(t *testing.T) {
	ix := NewIndex()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		ix.Add(id, []float32{1, float32(len(id))})
	}
	scores := ix.Query([]float32{1, 1}, 2)
	assert.Len(t, scores, 2)
}

func TestIndexBestSamplePerFont(t *testing.T) {
	ix := NewIndex()
	// Two samples for the same font: only the better one counts.
	ix.Add("mincho", []float32{1, 0})
	ix.Add("mincho", []float32{0, 1})

	scores := ix.Query([]float32{1, 0}, 10)
	require.Len(t, scores, 1)
	assert.Equal(t, "mincho", scores[0].FontID)
	assert.InDelta(t, 1.0, scores[0].Score, 1e-6)
}

func TestIndexDegenerateInputs(t *testing.T) {
	ix := NewIndex()
	assert.Nil(t, ix.Query([]float32{1, 0}, 5), "empty index")

	ix.Add("x", []float32{1, 2})
	assert.Nil(t, ix.Query(nil, 5), "nil query vector")
	assert.Nil(t, ix.Query([]float32{0, 0}, 5), "zero-norm query")
	assert.Nil(t, ix.Query([]float32{1, 2}, 0), "k of zero")

	// Mismatched dimensions are skipped, not scored.
	assert.Empty(t, ix.Query([]float32{1, 2, 3}, 5))
}

type fixedEmbedder struct {
	vec []float32
	err error
}

func (f *fixedEmbedder) Embed(_ image.Image) ([]float32, error) { return f.vec, f.err }

func TestEmbeddingStrategyUnavailable(t *testing.T) {
	db := fontdb.Database{
		"gothic": {Embeddings: [][]float32{{1, 0}}},
	}

	// No embedder at all.
	s := NewEmbeddingStrategy(db, nil, 0)
	assert.False(t, s.Available())
	scores, err := s.ScoreAgainstCatalog(image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)
	assert.Empty(t, scores)

	// Embedder present but catalog has no embeddings.
	s = NewEmbeddingStrategy(fontdb.Database{"bare": {}}, &fixedEmbedder{vec: []float32{1, 0}}, 0)
	assert.False(t, s.Available())
}

func TestEmbeddingStrategyScores(t *testing.T) {
	db := fontdb.Database{
		"gothic": {Embeddings: [][]float32{{1, 0}}},
		"mincho": {Embeddings: [][]float32{{0, 1}, nil}},
	}
	s := NewEmbeddingStrategy(db, &fixedEmbedder{vec: []float32{1, 0.2}}, 0)
	require.True(t, s.Available())

	scores, err := s.ScoreAgainstCatalog(image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, "gothic", scores[0].FontID)
	assert.Greater(t, scores[0].Score, scores[1].Score)
}

func TestEmbeddingStrategyQueryFailureIsSoft(t *testing.T) {
	db := fontdb.Database{"gothic": {Embeddings: [][]float32{{1, 0}}}}
	s := NewEmbeddingStrategy(db, &fixedEmbedder{err: assert.AnError}, 0)

	scores, err := s.ScoreAgainstCatalog(image.NewNRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err, "embedding failure degrades to empty results")
	assert.Empty(t, scores)
}
