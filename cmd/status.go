package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-source index and manifest state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ordered, _, err := openIndices(cfg)
		if err != nil {
			return err
		}
		man, err := openManifest(cfg)
		if err != nil {
			return err
		}
		defer man.Close()

		total := 0
		fmt.Printf("store: %s (dimensions: %d)\n\n", cfg.StoreDir, cfg.Embedding.Dimensions)
		for _, idx := range ordered {
			artifacts, err := man.Count(idx.Category())
			if err != nil {
				return err
			}
			fmt.Printf("  %-10s %6d fragments  %5d artifacts\n",
				idx.Category(), idx.Len(), artifacts)
			total += idx.Len()
		}
		fmt.Printf("\ntotal: %d fragments\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
