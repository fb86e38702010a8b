package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/export"
	"github.com/imagendo/radeval/internal/model"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert checked extraction records to per-report Excel files",
	Long: `Reads each schema-conforming record from the json_checked results tree
and writes a one-row Excel workbook per report, columns in template
order. These workbooks are the input to 'evaluate'.`,
	RunE: runConvert,
}

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Merge per-report Excel files into one workbook",
	Long: `Merges all per-report Excel files of a provider/model/dataset tree into
a single workbook with one row per report, for manual review.`,
	RunE: runCombine,
}

func init() {
	for _, c := range []*cobra.Command{convertCmd, combineCmd} {
		f := c.Flags()
		f.String("dataset", "", "dataset name from the manifest (required)")
		f.String("provider", "anthropic", "extraction provider the results came from")
		f.String("model", "", "model identifier (default: the provider's configured model)")
		_ = c.MarkFlagRequired("dataset")
		rootCmd.AddCommand(c)
	}

	combineCmd.Flags().String("output", "", "output workbook path (default: combined_extracted_data.xlsx in the excel tree)")
}

func runConvert(cmd *cobra.Command, _ []string) error {
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

	schema, err := model.LoadSchema(ds.TemplateJSON)
	if err != nil {
		return err
	}

	checkedDir := cfg.Results.CheckedJSONDir(providerName, modelName, ds.Name)
	excelDir := cfg.Results.ExcelDir(providerName, modelName, ds.Name)

	entries, err := os.ReadDir(checkedDir)
	if err != nil {
		return eris.Wrapf(err, "convert: read %s", checkedDir)
	}

	var done int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordJSONSuffix) {
			continue
		}

		rec, err := readRecordJSON(filepath.Join(checkedDir, e.Name()))
		if err != nil {
			zap.L().Warn("convert: record skipped", zap.String("file", e.Name()), zap.Error(err))
			continue
		}

		displayID := displayIDFromFile(ds, e.Name(), recordJSONSuffix)
		outPath := filepath.Join(excelDir, export.RecordFileName(displayID))
		if err := export.WriteRecordXLSX(outPath, schema, rec); err != nil {
			return err
		}
		done++
	}

	if done == 0 {
		return eris.Errorf("convert: no checked records in %s, run 'validate' first", checkedDir)
	}
	fmt.Printf("Converted %d records\n", done)
	return nil
}

func runCombine(cmd *cobra.Command, _ []string) error {
	datasetName, _ := cmd.Flags().GetString("dataset")
	providerName, _ := cmd.Flags().GetString("provider")
	modelName, _ := cmd.Flags().GetString("model")
	output, _ := cmd.Flags().GetString("output")

	ds, err := loadDataset(datasetName)
	if err != nil {
		return err
	}
	if modelName == "" {
		if modelName, err = providerModel(providerName); err != nil {
			return err
		}
	}

	excelDir := cfg.Results.ExcelDir(providerName, modelName, ds.Name)
	if output == "" {
		output = filepath.Join(excelDir, "combined_extracted_data.xlsx")
	}

	if err := export.Combine(excelDir, output); err != nil {
		return err
	}
	fmt.Printf("Combined workbook written to %s\n", output)
	return nil
}
