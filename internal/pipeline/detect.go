package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/MeKo-Tech/shotai/internal/ocr"
	"github.com/MeKo-Tech/shotai/internal/similarity"
)

// RankedCandidate is one detection result: a font identifier and its
// averaged similarity score, ordered descending.
type RankedCandidate struct {
	FontID string  `json:"font_id"`
	Score  float64 `json:"score"`
}

// Result carries the ranked candidates together with what the OCR stage
// saw, for callers that want to show the extracted text.
type Result struct {
	Candidates []RankedCandidate `json:"candidates"`
	Regions    []ocr.TextRegion  `json:"regions"`
	Strategy   Strategy          `json:"strategy"`
	Elapsed    time.Duration     `json:"-"`
}

// Detect runs the full pipeline on the image at path.
func (d *Detector) Detect(imagePath string, strategy Strategy) (*Result, error) {
	return d.DetectContext(context.Background(), imagePath, strategy)
}

// DetectContext is like Detect but allows cancellation between stages. The
// blocking OCR call itself is not interruptible; callers wanting a hard
// timeout must impose it around the whole detection.
func (d *Detector) DetectContext(ctx context.Context, imagePath string, strategy Strategy) (*Result, error) {
	start := time.Now()
	result := &Result{Strategy: strategy}

	regions, err := d.extractor.Extract(imagePath)
	if err != nil {
		return nil, err
	}
	result.Regions = regions
	if len(regions) == 0 {
		// No Japanese text is a legitimate terminal outcome, not an error.
		slog.Debug("no japanese text found", "path", imagePath)
		result.Elapsed = time.Since(start)
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	crops, err := ocr.CropRegionsFromFile(imagePath, regions)
	if err != nil {
		return nil, err
	}
	if len(crops) == 0 {
		result.Elapsed = time.Since(start)
		return result, nil
	}

	scorer := d.strategyFor(strategy)
	accumulated := make(map[string][]float64)
	for _, crop := range crops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := scorer.ScoreAgainstCatalog(crop)
		if err != nil {
			return nil, err
		}
		for _, s := range scores {
			accumulated[s.FontID] = append(accumulated[s.FontID], s.Score)
		}
	}

	result.Candidates = rank(accumulated, d.config.TopCandidates)
	result.Elapsed = time.Since(start)
	slog.Debug("detection complete",
		"path", imagePath,
		"strategy", scorer.Name(),
		"regions", len(regions),
		"crops", len(crops),
		"candidates", len(result.Candidates),
		"elapsed", result.Elapsed)
	return result, nil
}

func (d *Detector) strategyFor(strategy Strategy) similarity.Strategy {
	if strategy == StrategyEmbedding {
		return d.embedding
	}
	return d.ssim
}

// rank averages each font's accumulated per-crop scores, sorts descending
// and truncates. Ties keep font-identifier order, which is the catalog's
// deterministic iteration order.
func rank(accumulated map[string][]float64, limit int) []RankedCandidate {
	ids := make([]string, 0, len(accumulated))
	for id := range accumulated {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	candidates := make([]RankedCandidate, 0, len(ids))
	for _, id := range ids {
		scores := accumulated[id]
		var sum float64
		for _, s := range scores {
			sum += s
		}
		candidates = append(candidates, RankedCandidate{FontID: id, Score: sum / float64(len(scores))})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
