package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MeKo-Tech/shotai/internal/fontdb"
	"github.com/MeKo-Tech/shotai/internal/ocr"
	"github.com/MeKo-Tech/shotai/internal/pipeline"
	"github.com/MeKo-Tech/shotai/internal/similarity"
	"github.com/MeKo-Tech/shotai/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// detectCmd represents the detect command.
var detectCmd = &cobra.Command{
	Use:   "detect [image]",
	Short: "Detect which fonts an image's Japanese text most resembles",
	Long: `Detect the fonts used by the Japanese text in an image.

The image is scanned for Japanese text regions, each region is cropped and
compared against the rendered samples in the font catalog, and the top
candidates are printed ranked by similarity.

Examples:
  shotai detect poster.png
  shotai detect scan.jpg --strategy embedding
  shotai detect photo.png --format json --output result.json`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input image provided")
		}
		if len(args) > 1 {
			return fmt.Errorf("expected one input image, got %d", len(args))
		}
		imagePath := args[0]

		if !utils.IsSupportedImage(imagePath) {
			return fmt.Errorf("unsupported image format: %s", imagePath)
		}

		cfg := GetConfig()

		strategy, err := pipeline.ParseStrategy(cfg.Detection.Strategy)
		if err != nil {
			return err
		}

		format := cfg.Output.Format
		validFormats := []string{outputFormatText, outputFormatJSON}
		isValid := false
		for _, f := range validFormats {
			if format == f {
				isValid = true
				break
			}
		}
		if !isValid {
			return fmt.Errorf("invalid output format: %s (must be one of: %s)",
				format, strings.Join(validFormats, ", "))
		}

		store := fontdb.NewStore(cfg.ToStoreConfig(), nil, nil)
		catalog, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load font catalog: %w", err)
		}
		if len(catalog) == 0 {
			return errors.New("font catalog is empty; run 'shotai generate' first")
		}

		b := pipeline.NewBuilder().
			WithConfig(cfg.ToPipelineConfig()).
			WithEngine(ocr.NewTesseract(cfg.ToTesseractConfig())).
			WithCatalog(catalog)

		if strategy == pipeline.StrategyEmbedding {
			embedder, err := similarity.NewONNXEmbedder(cfg.ToEmbedderConfig())
			if err != nil {
				return fmt.Errorf("failed to load embedding model: %w", err)
			}
			defer func() {
				if err := embedder.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing embedder: %v\n", err)
				}
			}()
			b = b.WithEmbedder(embedder)
		}

		detector, err := b.Build()
		if err != nil {
			return fmt.Errorf("failed to build detection pipeline: %w", err)
		}

		result, err := detector.DetectContext(cmd.Context(), imagePath, strategy)
		if err != nil {
			return fmt.Errorf("detection failed for %s: %w", imagePath, err)
		}

		var out string
		switch format {
		case outputFormatJSON:
			obj := struct {
				File   string           `json:"file"`
				Result *pipeline.Result `json:"result"`
			}{File: imagePath, Result: result}
			bts, err := json.MarshalIndent(obj, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			out = string(bts) + "\n"
		default:
			out = formatTextResult(imagePath, result)
		}

		if cfg.Output.File != "" {
			if err := os.WriteFile(cfg.Output.File, []byte(out), 0o600); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", cfg.Output.File); err != nil {
				return err
			}
			return nil
		}

		if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	},
}

// formatTextResult renders a detection result for terminal output.
func formatTextResult(path string, result *pipeline.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", path)

	if len(result.Regions) == 0 {
		sb.WriteString("  no Japanese text found\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "  %d Japanese text region(s)\n", len(result.Regions))
	for _, r := range result.Regions {
		fmt.Fprintf(&sb, "    %q at (%d,%d) %dx%d conf=%d\n", r.Text, r.X, r.Y, r.W, r.H, r.Confidence)
	}

	if len(result.Candidates) == 0 {
		sb.WriteString("  no font candidates\n")
		return sb.String()
	}

	sb.WriteString("  candidates:\n")
	for i, c := range result.Candidates {
		fmt.Fprintf(&sb, "    %d. %s (%.3f)\n", i+1, c.FontID, c.Score)
	}
	return sb.String()
}

func addDetectFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("strategy", "s", "ssim", "comparison strategy (ssim, embedding)")
	cmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().Int("top", 3, "number of ranked candidates to return")
	cmd.Flags().Int("min-confidence", 30, "minimum OCR confidence for text regions (0-100)")
	cmd.Flags().String("model", "", "override embedding model path")
}

// bindDetectFlags binds all flags to viper configuration keys.
func bindDetectFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"detection.strategy", "strategy"},
		{"output.format", "format"},
		{"output.file", "output"},
		{"detection.top_candidates", "top"},
		{"ocr.min_confidence", "min-confidence"},
		{"embedding.model_path", "model"},
	}

	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(detectCmd)

	addDetectFlags(detectCmd)
	bindDetectFlags(detectCmd)
}

// GetDetectCommand returns the detect command for testing purposes.
func GetDetectCommand() *cobra.Command {
	return detectCmd
}
