package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imagendo/radeval/internal/compare"
	"github.com/imagendo/radeval/internal/dataset"
	"github.com/imagendo/radeval/internal/evaluate"
	"github.com/imagendo/radeval/internal/export"
	"github.com/imagendo/radeval/internal/fetcher"
	"github.com/imagendo/radeval/internal/model"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score extracted data against expert ground truth",
	Long: `Compares each report's extracted Excel row against the matching ground
truth row cell by cell, using tolerant equality (missing-value
equivalence, boolean synonyms, numeric epsilon, case-insensitive text).
Writes one accuracy artifact per report under the accuracy_reports tree.

Examples:
  # Score every converted report
  evaluate --dataset rri --provider anthropic

  # Score one report
  evaluate --dataset rri --report RRI002

  # Score and persist the run for later comparison
  evaluate --dataset rri --save`,
	RunE: runEvaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.String("dataset", "", "dataset name from the manifest (required)")
	f.String("provider", "anthropic", "extraction provider the results came from")
	f.String("model", "", "model identifier (default: the provider's configured model)")
	f.String("report", "", "compact report id (e.g., RRI002); default is all reports")
	f.Int("concurrency", 0, "parallel report evaluations (0=use config default)")
	f.Bool("save", false, "persist scores to the evaluation store")
	_ = evaluateCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	datasetName, _ := cmd.Flags().GetString("dataset")
	providerName, _ := cmd.Flags().GetString("provider")
	modelName, _ := cmd.Flags().GetString("model")
	reportID, _ := cmd.Flags().GetString("report")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	save, _ := cmd.Flags().GetBool("save")

	ds, err := loadDataset(datasetName)
	if err != nil {
		return err
	}
	var fErr error
	if modelName == "" {
		if modelName, fErr = providerModel(providerName); fErr != nil {
			return fErr
		}
	}
	if concurrency <= 0 {
		concurrency = cfg.Evaluate.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	truth, err := fetcher.ReadTable(ds.GroundTruthXLSX, fetcher.XLSXOptions{SheetName: ds.GroundTruthSheet})
	if err != nil {
		return err
	}

	excelDir := cfg.Results.ExcelDir(providerName, modelName, ds.Name)
	accuracyDir := cfg.Results.AccuracyDir(providerName, modelName, ds.Name)

	ids, err := convertedReportIDs(ds, excelDir)
	if err != nil {
		return err
	}
	want := model.NormalizeID(reportID)
	if want != "" {
		ids = filterIDs(ids, want)
	}
	if len(ids) == 0 {
		return eris.Errorf("evaluate: no converted reports in %s, run 'convert' first", excelDir)
	}

	if err := os.MkdirAll(accuracyDir, 0o755); err != nil {
		return eris.Wrapf(err, "evaluate: create dir %s", accuracyDir)
	}

	scorer := evaluate.NewScorer(compare.NewOracle(cfg.Compare), cfg.Evaluate)

	zap.L().Info("evaluate: scoring reports",
		zap.String("dataset", ds.Name),
		zap.Int("reports", len(ids)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	var results []*model.ComparisonResult
	var failed atomic.Int64

	for _, displayID := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := scoreOne(scorer, truth, excelDir, accuracyDir, displayID, providerName, modelName)
			if err != nil {
				// One bad report must not sink the corpus.
				zap.L().Warn("evaluate: report failed",
					zap.String("report_id", displayID),
					zap.Error(err),
				)
				failed.Add(1)
				return nil
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "evaluate: batch")
	}

	if len(results) == 0 {
		return eris.Errorf("evaluate: all %d reports failed", len(ids))
	}

	if save {
		if err := saveRun(ctx, ds, providerName, modelName, results); err != nil {
			return err
		}
	}

	fmt.Printf("Scored %d reports (%d failed), artifacts in %s\n", len(results), failed.Load(), accuracyDir)
	return nil
}

func scoreOne(scorer *evaluate.Scorer, truth *model.Table, excelDir, accuracyDir, displayID, providerName, modelName string) (*model.ComparisonResult, error) {
	extracted, err := fetcher.ReadTable(filepath.Join(excelDir, export.RecordFileName(displayID)), fetcher.XLSXOptions{})
	if err != nil {
		return nil, err
	}

	res, err := scorer.Score(truth, extracted, displayID, providerName, modelName)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(filepath.Join(accuracyDir, evaluate.ArtifactFileName(displayID)))
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: create artifact for %s", displayID)
	}
	defer f.Close() //nolint:errcheck

	if err := evaluate.WriteArtifact(f, res); err != nil {
		return nil, err
	}
	return res, nil
}

func saveRun(ctx context.Context, ds dataset.Dataset, providerName, modelName string, results []*model.ComparisonResult) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.CreateRun(ctx, ds.Name, providerName, modelName)
	if err != nil {
		return err
	}
	for _, res := range results {
		if err := st.SaveScore(ctx, run.ID, res); err != nil {
			return err
		}
	}

	fmt.Printf("Saved run %s with %d scores\n", run.ID, len(results))
	return nil
}

// convertedReportIDs lists display-form report ids that have a converted
// Excel file, sorted by filename.
func convertedReportIDs(ds dataset.Dataset, excelDir string) ([]string, error) {
	entries, err := os.ReadDir(excelDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "evaluate: read %s", excelDir)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), export.RecordSuffix) {
			continue
		}
		if strings.HasPrefix(e.Name(), "combined") {
			continue
		}
		ids = append(ids, displayIDFromFile(ds, e.Name(), export.RecordSuffix))
	}
	return ids, nil
}

func filterIDs(ids []string, wantCompact string) []string {
	var out []string
	for _, id := range ids {
		if model.NormalizeID(id) == wantCompact {
			out = append(out, id)
		}
	}
	return out
}
