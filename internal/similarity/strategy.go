package similarity

import (
	"image"
	"log/slog"

	"github.com/MeKo-Tech/shotai/internal/fontdb"
	"github.com/MeKo-Tech/shotai/internal/utils"
)

// FontScore pairs a font identifier with a similarity score. For the SSIM
// strategy scores live in [0,1]; the embedding strategy produces unbounded
// but mutually comparable values.
type FontScore struct {
	FontID string  `json:"font_id"`
	Score  float64 `json:"score"`
}

// Strategy scores one cropped query image against the whole catalog. The
// orchestrator accumulates and averages the per-crop results.
type Strategy interface {
	Name() string
	ScoreAgainstCatalog(img image.Image) ([]FontScore, error)
}

// SSIMConfig holds configuration for the pixel-structural strategy.
type SSIMConfig struct {
	// CompareWidth/CompareHeight is the common size both query and sample
	// are resized to before comparison, neutralizing the scale difference
	// between arbitrary crops and the fixed sample canvas.
	CompareWidth  int
	CompareHeight int
}

// DefaultSSIMConfig returns the default comparison size.
func DefaultSSIMConfig() SSIMConfig {
	return SSIMConfig{CompareWidth: 100, CompareHeight: 50}
}

// SSIMStrategy compares query crops pixel-structurally against every sample
// image of every cataloged font.
type SSIMStrategy struct {
	config SSIMConfig
	db     fontdb.Database
}

// NewSSIMStrategy creates the pixel-structural strategy over the given
// catalog.
func NewSSIMStrategy(db fontdb.Database, config SSIMConfig) *SSIMStrategy {
	if config.CompareWidth <= 0 || config.CompareHeight <= 0 {
		config = DefaultSSIMConfig()
	}
	return &SSIMStrategy{config: config, db: db}
}

// Name identifies the strategy in logs and CLI output.
func (s *SSIMStrategy) Name() string { return "ssim" }

// ScoreFont compares a query image against one font's samples and returns
// the mean SSIM. Unknown fonts score 0.0 rather than erroring, which simply
// excludes them from the ranking. Unreadable sample files are skipped; a
// single corrupt catalog entry never fails a whole detection request.
func (s *SSIMStrategy) ScoreFont(img image.Image, fontID string) float64 {
	entry, ok := s.db[fontID]
	if !ok {
		return 0.0
	}

	query := utils.ToGray(img)
	queryResized, err := utils.ResizeGray(query, s.config.CompareWidth, s.config.CompareHeight)
	if err != nil {
		return 0.0
	}

	var sum float64
	var scored int
	for _, samplePath := range entry.Samples {
		sampleImg, _, err := utils.LoadImage(samplePath)
		if err != nil {
			slog.Warn("skipping unreadable sample", "font", fontID, "sample", samplePath, "error", err)
			continue
		}
		sampleResized, err := utils.ResizeGray(utils.ToGray(sampleImg), s.config.CompareWidth, s.config.CompareHeight)
		if err != nil {
			continue
		}
		score, err := SSIM(queryResized, sampleResized)
		if err != nil {
			continue
		}
		sum += score
		scored++
	}
	if scored == 0 {
		return 0.0
	}
	return sum / float64(scored)
}

// ScoreAgainstCatalog scores the query against every font in the catalog,
// in deterministic font-identifier order.
func (s *SSIMStrategy) ScoreAgainstCatalog(img image.Image) ([]FontScore, error) {
	ids := s.db.FontIDs()
	scores := make([]FontScore, 0, len(ids))
	for _, id := range ids {
		scores = append(scores, FontScore{FontID: id, Score: s.ScoreFont(img, id)})
	}
	return scores, nil
}
