package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/imagendo/radeval/internal/analyze"
	"github.com/imagendo/radeval/internal/fetcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Cross-reference source PDFs, ground truth, and scored reports",
	Long: `Reports pipeline coverage for a provider/model/dataset tree: which
source reports have been scored, which are still pending, which scored
reports lack a ground truth row, and which have no source PDF at all.`,
	RunE: runStatus,
}

func init() {
	f := statusCmd.Flags()
	f.String("dataset", "", "dataset name from the manifest (required)")
	f.String("provider", "anthropic", "extraction provider the results came from")
	f.String("model", "", "model identifier (default: the provider's configured model)")
	_ = statusCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
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

	truth, err := fetcher.ReadTable(ds.GroundTruthXLSX, fetcher.XLSXOptions{SheetName: ds.GroundTruthSheet})
	if err != nil {
		return err
	}

	pattern, err := ds.CompilePDFPattern()
	if err != nil {
		return err
	}

	accuracyDir := cfg.Results.AccuracyDir(providerName, modelName, ds.Name)
	rep, err := analyze.Coverage(ds.ReportPDFDir, accuracyDir, truth, cfg.Evaluate.IDColumns, pattern)
	if err != nil {
		return err
	}

	return analyze.WriteCoverage(os.Stdout, rep)
}
