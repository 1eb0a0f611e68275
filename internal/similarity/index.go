package similarity

import (
	"math"
	"sort"
)

// Index is an in-memory nearest-neighbor index over catalog embeddings.
// Entries are compared by cosine similarity. The index is read-only after
// construction and safe for concurrent queries.
type Index struct {
	entries []indexEntry
}

type indexEntry struct {
	fontID string
	vector []float32
	norm   float64
}

// NewIndex creates an empty index.
func NewIndex() *Index { return &Index{} }

// Add inserts one embedding for a font. A font may contribute several
// entries, one per sample image.
func (ix *Index) Add(fontID string, vector []float32) {
	if len(vector) == 0 {
		return
	}
	ix.entries = append(ix.entries, indexEntry{
		fontID: fontID,
		vector: vector,
		norm:   l2norm(vector),
	})
}

// Len returns the number of indexed embeddings.
func (ix *Index) Len() int { return len(ix.entries) }

// Query returns the top-k entries most similar to the query vector,
// descending by cosine similarity. Each font appears at most once, with its
// best-matching sample's similarity.
func (ix *Index) Query(vector []float32, k int) []FontScore {
	if len(vector) == 0 || len(ix.entries) == 0 || k <= 0 {
		return nil
	}
	qnorm := l2norm(vector)
	if qnorm == 0 {
		return nil
	}

	best := make(map[string]float64)
	for _, e := range ix.entries {
		if len(e.vector) != len(vector) || e.norm == 0 {
			continue
		}
		sim := dot(vector, e.vector) / (qnorm * e.norm)
		if cur, ok := best[e.fontID]; !ok || sim > cur {
			best[e.fontID] = sim
		}
	}

	scores := make([]FontScore, 0, len(best))
	for id, sim := range best {
		scores = append(scores, FontScore{FontID: id, Score: sim})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].FontID < scores[j].FontID
	})
	if len(scores) > k {
		scores = scores[:k]
	}
	return scores
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func l2norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
