package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/convert"
	"github.com/imagendo/radeval/internal/dataset"
	"github.com/imagendo/radeval/internal/extract"
	"github.com/imagendo/radeval/internal/model"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured data from report page images",
	Long: `Sends each report's page images plus the dataset template to the chosen
LLM provider and stores the raw JSON response under the json_raw results
tree. Run 'pages' first to prepare the page images.

Examples:
  # Extract every report with the configured Anthropic model
  extract --dataset rri --provider anthropic

  # Extract a single report
  extract --dataset rri --provider openai --report RRI002`,
	RunE: runExtract,
}

func init() {
	f := extractCmd.Flags()
	f.String("dataset", "", "dataset name from the manifest (required)")
	f.String("provider", "anthropic", "extraction provider: anthropic or openai")
	f.String("report", "", "compact report id (e.g., RRI002); default is all reports")
	f.Bool("overwrite", false, "re-extract reports that already have a raw JSON result")
	_ = extractCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	datasetName, _ := cmd.Flags().GetString("dataset")
	providerName, _ := cmd.Flags().GetString("provider")
	reportID, _ := cmd.Flags().GetString("report")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	ds, err := loadDataset(datasetName)
	if err != nil {
		return err
	}

	provider, err := newRegistry().Get(providerName)
	if err != nil {
		return eris.Wrap(err, "extract: no API key configured?")
	}

	schema, err := model.LoadSchema(ds.TemplateJSON)
	if err != nil {
		return err
	}

	ids, err := pageImageReportIDs(ds)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return eris.Errorf("extract: no page images under %s, run 'pages' first", cfg.Results.PageImagesDir(ds.Name))
	}

	rawDir := cfg.Results.RawJSONDir(provider.Name(), provider.Model(), ds.Name)

	want := model.NormalizeID(reportID)
	var done, failed int
	for _, id := range ids {
		if want != "" && id != want {
			continue
		}
		displayID := ds.DisplayID(id)
		outPath := filepath.Join(rawDir, recordJSONName(displayID))

		if !overwrite {
			if _, err := os.Stat(outPath); err == nil {
				zap.L().Debug("extract: raw result exists, skipping",
					zap.String("report_id", displayID),
				)
				continue
			}
		}

		if err := extractOne(ctx, provider, ds, schema, id, outPath); err != nil {
			zap.L().Warn("extract: report failed",
				zap.String("report_id", displayID),
				zap.Error(err),
			)
			failed++
			continue
		}
		done++
		fmt.Printf("%s: extracted\n", displayID)
	}

	if done == 0 && failed == 0 {
		return eris.Errorf("extract: nothing to do (report %q, overwrite=%v)", reportID, overwrite)
	}
	fmt.Printf("Extracted %d reports (%d failed)\n", done, failed)
	return nil
}

func extractOne(ctx context.Context, provider extract.Provider, ds dataset.Dataset, schema *model.Schema, id, outPath string) error {
	imgDir := filepath.Join(cfg.Results.PageImagesDir(ds.Name), id)
	entries, err := os.ReadDir(imgDir)
	if err != nil {
		return eris.Wrapf(err, "extract: read page images %s", imgDir)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() {
			paths = append(paths, filepath.Join(imgDir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return eris.Errorf("extract: no page images for report %s", id)
	}

	pages, err := convert.LoadImages(paths)
	if err != nil {
		return err
	}

	prompt := extract.BuildPrompt(schema, ds.DisplayID(id))
	rec, err := provider.Extract(ctx, prompt, pages)
	if err != nil {
		return err
	}

	return writeRecordJSON(outPath, rec)
}

// pageImageReportIDs lists the report ids that have a page-image directory,
// sorted.
func pageImageReportIDs(ds dataset.Dataset) ([]string, error) {
	root := cfg.Results.PageImagesDir(ds.Name)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "extract: read %s", root)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}
