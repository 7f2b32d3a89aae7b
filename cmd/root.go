package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Subhe93/murbaat-import/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "murbaat-import",
	Short: "Bulk company importer for the Murbaat directory",
	Long:  "Imports companies from Google-Maps-style CSV/XLSX exports: normalizes fields, resolves categories and locations, downloads listing images.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
