package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imagendo/radeval/internal/compare"
	"github.com/imagendo/radeval/internal/convert"
	"github.com/imagendo/radeval/internal/dataset"
	"github.com/imagendo/radeval/internal/evaluate"
	"github.com/imagendo/radeval/internal/export"
	"github.com/imagendo/radeval/internal/extract"
	"github.com/imagendo/radeval/internal/fetcher"
	"github.com/imagendo/radeval/internal/model"
	"github.com/imagendo/radeval/internal/reconcile"
	"github.com/imagendo/radeval/internal/report"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: pages, extract, validate, convert, evaluate",
	Long: `Runs every pipeline stage in-process for a dataset: extracts page images
from the source PDFs, sends them to the LLM provider, reconciles the
response against the template, converts it to Excel, scores it against
ground truth, and prints the corpus summary.

Intermediate results land in the same trees the individual commands use,
so a partial run can be resumed stage by stage.`,
	RunE: runPipeline,
}

func init() {
	f := runCmd.Flags()
	f.String("dataset", "", "dataset name from the manifest (required)")
	f.String("provider", "anthropic", "extraction provider: anthropic or openai")
	f.String("report", "", "compact report id (e.g., RRI002); default is all reports")
	f.Int("concurrency", 0, "parallel report pipelines (0=use config default)")
	f.Bool("save", false, "persist scores to the evaluation store")
	_ = runCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(runCmd)
}

// pipelineEnv bundles the per-run collaborators shared by all reports.
type pipelineEnv struct {
	ds       dataset.Dataset
	provider extract.Provider
	schema   *model.Schema
	rc       *reconcile.Reconciler
	scorer   *evaluate.Scorer
	truth    *model.Table
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	datasetName, _ := cmd.Flags().GetString("dataset")
	providerName, _ := cmd.Flags().GetString("provider")
	reportID, _ := cmd.Flags().GetString("report")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	save, _ := cmd.Flags().GetBool("save")

	ds, err := loadDataset(datasetName)
	if err != nil {
		return err
	}
	provider, err := newRegistry().Get(providerName)
	if err != nil {
		return eris.Wrap(err, "run: no API key configured?")
	}
	schema, err := model.LoadSchema(ds.TemplateJSON)
	if err != nil {
		return err
	}
	truth, err := fetcher.ReadTable(ds.GroundTruthXLSX, fetcher.XLSXOptions{SheetName: ds.GroundTruthSheet})
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = cfg.Evaluate.Concurrency
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	env := &pipelineEnv{
		ds:       ds,
		provider: provider,
		schema:   schema,
		rc:       reconcile.New(cfg.Reconcile),
		scorer:   evaluate.NewScorer(compare.NewOracle(cfg.Compare), cfg.Evaluate),
		truth:    truth,
	}

	pdfs, err := listReportPDFs(ds)
	if err != nil {
		return err
	}
	want := model.NormalizeID(reportID)
	var selected []string
	for _, name := range pdfs {
		id := model.NormalizeID(name[:len(name)-len(filepath.Ext(name))])
		if want != "" && id != want {
			continue
		}
		selected = append(selected, name)
	}
	if len(selected) == 0 {
		return eris.Errorf("run: no matching report PDFs in %s", ds.ReportPDFDir)
	}

	zap.L().Info("run: pipeline starting",
		zap.String("dataset", ds.Name),
		zap.String("provider", provider.Name()),
		zap.String("model", provider.Model()),
		zap.Int("reports", len(selected)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var mu sync.Mutex
	var results []*model.ComparisonResult
	var failed atomic.Int64

	for _, pdfName := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := runReportPipeline(gctx, env, pdfName)
			if err != nil {
				zap.L().Warn("run: report failed",
					zap.String("pdf", pdfName),
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
		return eris.Wrap(err, "run: batch")
	}

	if len(results) == 0 {
		return eris.Errorf("run: all %d reports failed", len(selected))
	}

	if save {
		if err := saveRun(ctx, ds, provider.Name(), provider.Model(), results); err != nil {
			return err
		}
	}

	scores := make([]model.ReportScore, 0, len(results))
	for _, r := range results {
		scores = append(scores, model.ReportScore{ReportID: r.ReportID, Accuracy: r.Accuracy})
	}
	sum, err := report.Summarize(scores)
	if err != nil {
		return err
	}
	if err := report.WriteSummary(os.Stdout, sum, scores); err != nil {
		return err
	}

	fmt.Printf("\nPipeline complete: %d scored, %d failed\n", len(results), failed.Load())
	return nil
}

func runReportPipeline(ctx context.Context, env *pipelineEnv, pdfName string) (*model.ComparisonResult, error) {
	id := model.NormalizeID(pdfName[:len(pdfName)-len(filepath.Ext(pdfName))])
	displayID := env.ds.DisplayID(id)
	providerName := env.provider.Name()
	modelName := env.provider.Model()

	// Stage 1: page images.
	imgDir := filepath.Join(cfg.Results.PageImagesDir(env.ds.Name), id)
	paths, err := convert.PageImages(filepath.Join(env.ds.ReportPDFDir, pdfName), imgDir, cfg.Providers.PagesPerReport)
	if err != nil {
		return nil, err
	}
	pages, err := convert.LoadImages(paths)
	if err != nil {
		return nil, err
	}

	// Stage 2: LLM extraction.
	prompt := extract.BuildPrompt(env.schema, displayID)
	raw, err := env.provider.Extract(ctx, prompt, pages)
	if err != nil {
		return nil, err
	}
	rawPath := filepath.Join(cfg.Results.RawJSONDir(providerName, modelName, env.ds.Name), recordJSONName(displayID))
	if err := writeRecordJSON(rawPath, raw); err != nil {
		return nil, err
	}

	// Stage 3: schema reconciliation.
	checked, rep := env.rc.Reconcile(env.schema, raw)
	if rep.Changed() {
		zap.L().Info("run: record repaired",
			zap.String("report_id", displayID),
			zap.Strings("added", rep.Added),
			zap.Any("renamed", rep.Renamed),
			zap.Strings("deleted", rep.Deleted),
		)
	}
	checkedPath := filepath.Join(cfg.Results.CheckedJSONDir(providerName, modelName, env.ds.Name), recordJSONName(displayID))
	if err := writeRecordJSON(checkedPath, checked); err != nil {
		return nil, err
	}

	// Stage 4: tabular conversion.
	excelDir := cfg.Results.ExcelDir(providerName, modelName, env.ds.Name)
	if err := export.WriteRecordXLSX(filepath.Join(excelDir, export.RecordFileName(displayID)), env.schema, checked); err != nil {
		return nil, err
	}

	// Stage 5: scoring.
	accuracyDir := cfg.Results.AccuracyDir(providerName, modelName, env.ds.Name)
	if err := os.MkdirAll(accuracyDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "run: create dir %s", accuracyDir)
	}
	return scoreOne(env.scorer, env.truth, excelDir, accuracyDir, displayID, providerName, modelName)
}
