package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/imagendo/radeval/internal/analyze"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank template columns by extraction error count",
	Long: `Reads the differences tables of every accuracy artifact in a
provider/model/dataset tree and counts how often each template column
disagreed with ground truth, most error-prone first. The distribution
prints to stdout and lands in the overall_analysis tree.`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("dataset", "", "dataset name from the manifest (required)")
	f.String("provider", "anthropic", "extraction provider the results came from")
	f.String("model", "", "model identifier (default: the provider's configured model)")
	_ = analyzeCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	datasetName, _ := cmd.Flags().GetString("dataset")
	providerName, _ := cmd.Flags().GetString("provider")
	modelName, _ := cmd.Flags().GetString("model")

	ds, err := loadDataset(datasetName)
	if err != nil {
		return err
	}
	if modelName == "" {
		if modelName, err = providerModel(providerName); err != nil {
			return err
		}
	}

	accuracyDir := cfg.Results.AccuracyDir(providerName, modelName, ds.Name)
	dist, err := analyze.ErrorDistribution(accuracyDir)
	if err != nil {
		return err
	}

	if err := analyze.WriteDistribution(os.Stdout, dist); err != nil {
		return err
	}

	analysisDir := cfg.Results.AnalysisDir(providerName, modelName, ds.Name)
	if err := os.MkdirAll(analysisDir, 0o755); err != nil {
		return eris.Wrapf(err, "analyze: create dir %s", analysisDir)
	}
	outPath := filepath.Join(analysisDir, "error_distribution.txt")
	f, err := os.Create(outPath)
	if err != nil {
		return eris.Wrapf(err, "analyze: create %s", outPath)
	}
	defer f.Close() //nolint:errcheck
	if err := analyze.WriteDistribution(f, dist); err != nil {
		return err
	}

	fmt.Printf("\nError distribution written to %s\n", outPath)
	return nil
}
