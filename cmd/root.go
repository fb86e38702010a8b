package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "radeval",
	Short: "LLM radiology report extraction evaluator",
	Long:  "Extracts structured data from scanned radiology reports via multimodal LLMs, reconciles it against the dataset template, and scores it cell by cell against expert ground truth.",
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
