package main

import (
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/convert"
	"github.com/imagendo/radeval/internal/model"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Extract page images from source report PDFs",
	Long: `Validates each source report PDF of a dataset and extracts the scanned
page images needed for multimodal extraction. Images land under the
processed_images results tree, one directory per report.

Runs for the whole dataset unless --report narrows it to one report.`,
	RunE: runPages,
}

func init() {
	f := pagesCmd.Flags()
	f.String("dataset", "", "dataset name from the manifest (required)")
	f.String("report", "", "compact report id (e.g., RRI002); default is all reports")
	_ = pagesCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(pagesCmd)
}

func runPages(cmd *cobra.Command, _ []string) error {
	datasetName, _ := cmd.Flags().GetString("dataset")
	reportID, _ := cmd.Flags().GetString("report")

	ds, err := loadDataset(datasetName)
	if err != nil {
		return err
	}

	pdfs, err := listReportPDFs(ds)
	if err != nil {
		return err
	}
	if len(pdfs) == 0 {
		return eris.Errorf("pages: no report PDFs found in %s", ds.ReportPDFDir)
	}

	want := model.NormalizeID(reportID)
	var done int
	for _, name := range pdfs {
		id := model.NormalizeID(name[:len(name)-len(filepath.Ext(name))])
		if want != "" && id != want {
			continue
		}

		outDir := filepath.Join(cfg.Results.PageImagesDir(ds.Name), id)
		paths, err := convert.PageImages(filepath.Join(ds.ReportPDFDir, name), outDir, cfg.Providers.PagesPerReport)
		if err != nil {
			zap.L().Warn("pages: report skipped",
				zap.String("report_id", id),
				zap.Error(err),
			)
			continue
		}
		done++
		fmt.Printf("%s: %d page images\n", ds.DisplayID(id), len(paths))
	}

	if done == 0 {
		return eris.Errorf("pages: no reports processed (report %q)", reportID)
	}
	fmt.Printf("Processed %d of %d reports\n", done, len(pdfs))
	return nil
}
