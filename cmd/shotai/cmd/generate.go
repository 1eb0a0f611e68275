package cmd

import (
	"fmt"
	"os"

	"github.com/MeKo-Tech/shotai/internal/fontdb"
	"github.com/MeKo-Tech/shotai/internal/similarity"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// generateCmd represents the generate command.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render font samples and build the catalog",
	Long: `Render text samples for Japanese-capable fonts and write the catalog.

Fonts are taken from --font, or discovered in the standard system font
directories when none are given. Each font is rendered against a fixed set
of sample phrases; custom phrases can be supplied in a YAML file.

The catalog is rewritten from scratch on every run.

Examples:
  shotai generate
  shotai generate --font /usr/share/fonts/truetype/noto/NotoSansCJK-Regular.ttc
  shotai generate --texts-file phrases.yaml --font-size 48
  shotai generate --embed --model models/font-embedder.onnx`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		fonts, _ := cmd.Flags().GetStringSlice("font")
		textsFile, _ := cmd.Flags().GetString("texts-file")
		embed, _ := cmd.Flags().GetBool("embed")

		texts := fontdb.DefaultSampleTexts
		if textsFile != "" {
			loaded, err := loadSampleTexts(textsFile)
			if err != nil {
				return err
			}
			texts = loaded
		}

		store := fontdb.NewStore(cfg.ToStoreConfig(), nil, nil)
		db, err := store.GenerateSamples(fontdb.GenerateOptions{
			FontPaths:   fonts,
			SampleTexts: texts,
			FontSize:    cfg.Generate.FontSize,
		})
		if err != nil {
			return fmt.Errorf("sample generation failed: %w", err)
		}

		if embed {
			embedder, err := similarity.NewONNXEmbedder(cfg.ToEmbedderConfig())
			if err != nil {
				return fmt.Errorf("failed to load embedding model: %w", err)
			}
			defer func() {
				if err := embedder.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing embedder: %v\n", err)
				}
			}()

			similarity.ComputeCatalogEmbeddings(db, embedder)
			if err := store.Save(db); err != nil {
				return fmt.Errorf("failed to save catalog with embeddings: %w", err)
			}
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Catalog written with %d font(s) to %s\n",
			len(db), store.SamplesDir()); err != nil {
			return err
		}
		return nil
	},
}

// sampleTextsFile is the YAML shape accepted by --texts-file.
type sampleTextsFile struct {
	Texts []string `yaml:"texts"`
}

// loadSampleTexts reads sample phrases from a YAML file. The file either
// holds a top-level "texts" list or a bare list of strings.
func loadSampleTexts(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read texts file: %w", err)
	}

	var wrapped sampleTextsFile
	if err := yaml.Unmarshal(data, &wrapped); err == nil && len(wrapped.Texts) > 0 {
		return wrapped.Texts, nil
	}

	var bare []string
	if err := yaml.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("failed to parse texts file %s: %w", path, err)
	}
	if len(bare) == 0 {
		return nil, fmt.Errorf("texts file %s contains no phrases", path)
	}
	return bare, nil
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("font", nil, "font file to render (repeatable; default: discover system fonts)")
	cmd.Flags().String("texts-file", "", "YAML file with sample phrases to render")
	cmd.Flags().Int("font-size", 32, "point size for rendered samples")
	cmd.Flags().Bool("embed", false, "also compute sample embeddings with the ONNX model")
	cmd.Flags().String("model", "", "override embedding model path")
}

// bindGenerateFlags binds all flags to viper configuration keys.
func bindGenerateFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"generate.font_size", "font-size"},
		{"embedding.model_path", "model"},
	}

	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)

	addGenerateFlags(generateCmd)
	bindGenerateFlags(generateCmd)
}

// GetGenerateCommand returns the generate command for testing purposes.
func GetGenerateCommand() *cobra.Command {
	return generateCmd
}
