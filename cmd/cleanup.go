package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Subhe93/murbaat-import/internal/images"
)

var cleanupOlderThan time.Duration

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old images from the upload directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := images.New(cfg.Images)

		deleted, err := fetcher.CleanupOlderThan(cleanupOlderThan)
		if err != nil {
			return err
		}
		size, err := fetcher.StorageSize()
		if err != nil {
			return err
		}

		zap.L().Info("cleanup finished",
			zap.Int("deleted", deleted),
			zap.Duration("older_than", cleanupOlderThan),
			zap.Int64("storage_bytes", size))
		return nil
	},
}

func init() {
	cleanupCmd.Flags().DurationVar(&cleanupOlderThan, "older-than", 720*time.Hour, "delete images older than this age")
	rootCmd.AddCommand(cleanupCmd)
}
