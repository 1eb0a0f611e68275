package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/shotai/internal/fontdb"
	"github.com/spf13/cobra"
)

// fontsCmd represents the fonts command.
var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List fonts known to the detector",
	Long: `List the fonts in the catalog, or the Japanese-capable fonts
discovered on this system.

Examples:
  shotai fonts
  shotai fonts --discover
  shotai fonts --format json`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		discover, _ := cmd.Flags().GetBool("discover")
		format, _ := cmd.Flags().GetString("format")

		if discover {
			paths, err := fontdb.NewSystemDiscovery().ListJapaneseFonts()
			if err != nil {
				return fmt.Errorf("font discovery failed: %w", err)
			}
			return printFontList(cmd, format, paths)
		}

		store := fontdb.NewStore(cfg.ToStoreConfig(), nil, nil)
		db, err := store.Load()
		if err != nil {
			return fmt.Errorf("failed to load font catalog: %w", err)
		}

		if format == outputFormatJSON {
			bts, err := json.MarshalIndent(db, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal JSON: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bts))
			return err
		}

		if len(db) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "catalog is empty; run 'shotai generate' first")
			return err
		}
		for _, id := range db.FontIDs() {
			entry := db[id]
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d sample(s)\n",
				id, entry.Path, len(entry.Samples)); err != nil {
				return err
			}
		}
		return nil
	},
}

func printFontList(cmd *cobra.Command, format string, paths []string) error {
	if format == outputFormatJSON {
		bts, err := json.MarshalIndent(paths, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bts))
		return err
	}

	if len(paths) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "no Japanese-capable fonts found")
		return err
	}
	for _, p := range paths {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(fontsCmd)

	fontsCmd.Flags().Bool("discover", false, "list Japanese-capable system fonts instead of the catalog")
	fontsCmd.Flags().StringP("format", "f", "text", "output format (text, json)")
}

// GetFontsCommand returns the fonts command for testing purposes.
func GetFontsCommand() *cobra.Command {
	return fontsCmd
}
