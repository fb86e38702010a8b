package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/imagendo/radeval/internal/evaluate"
	"github.com/imagendo/radeval/internal/model"
	"github.com/imagendo/radeval/internal/report"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Aggregate per-report accuracies into corpus statistics",
	Long: `Collects every per-report accuracy artifact of a provider/model/dataset
tree and reports corpus statistics: mean, median, standard deviation,
min/max with report provenance, and a ten-bin accuracy histogram. The
summary prints to stdout and lands in the overall_analysis tree.

With --run, accuracies come from a persisted evaluation run instead of
the artifact files.`,
	RunE: runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.String("dataset", "", "dataset name from the manifest (required)")
	f.String("provider", "anthropic", "extraction provider the results came from")
	f.String("model", "", "model identifier (default: the provider's configured model)")
	f.String("run", "", "persisted run id to summarize instead of artifact files")
	_ = summaryCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	datasetName, _ := cmd.Flags().GetString("dataset")
	providerName, _ := cmd.Flags().GetString("provider")
	modelName, _ := cmd.Flags().GetString("model")
	runID, _ := cmd.Flags().GetString("run")

	ds, err := loadDataset(datasetName)
	if err != nil {
		return err
	}
	if modelName == "" {
		if modelName, err = providerModel(providerName); err != nil {
			return err
		}
	}

	var scores []model.ReportScore
	if runID != "" {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		results, err := st.ListScores(ctx, runID)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return eris.Errorf("summary: run %s has no scores", runID)
		}
		for _, r := range results {
			scores = append(scores, model.ReportScore{ReportID: r.ReportID, Accuracy: r.Accuracy})
		}
	} else {
		accuracyDir := cfg.Results.AccuracyDir(providerName, modelName, ds.Name)
		if scores, err = evaluate.CollectScores(accuracyDir); err != nil {
			return err
		}
	}

	sum, err := report.Summarize(scores)
	if err != nil {
		return err
	}

	if err := report.WriteSummary(os.Stdout, sum, scores); err != nil {
		return err
	}

	analysisDir := cfg.Results.AnalysisDir(providerName, modelName, ds.Name)
	if err := os.MkdirAll(analysisDir, 0o755); err != nil {
		return eris.Wrapf(err, "summary: create dir %s", analysisDir)
	}
	outPath := filepath.Join(analysisDir, "corpus_summary.txt")
	f, err := os.Create(outPath)
	if err != nil {
		return eris.Wrapf(err, "summary: create %s", outPath)
	}
	defer f.Close() //nolint:errcheck
	if err := report.WriteSummary(f, sum, scores); err != nil {
		return err
	}

	fmt.Printf("\nSummary written to %s\n", outPath)
	return nil
}
