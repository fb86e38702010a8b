package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/model"
	"github.com/imagendo/radeval/internal/reconcile"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Reconcile raw extraction JSON against the dataset template",
	Long: `Reads each raw extraction result, repairs misspelled keys, fills missing
fields with the template defaults, drops unrelated extras, and writes the
schema-conforming record under the json_checked results tree.

Every checked record has exactly the template's fields.`,
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.String("dataset", "", "dataset name from the manifest (required)")
	f.String("provider", "anthropic", "extraction provider the raw results came from")
	f.String("model", "", "model identifier (default: the provider's configured model)")
	_ = validateCmd.MarkFlagRequired("dataset")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
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
	rc := reconcile.New(cfg.Reconcile)

	rawDir := cfg.Results.RawJSONDir(providerName, modelName, ds.Name)
	checkedDir := cfg.Results.CheckedJSONDir(providerName, modelName, ds.Name)

	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return eris.Wrapf(err, "validate: read %s", rawDir)
	}

	var done, repaired int
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordJSONSuffix) {
			continue
		}

		rec, err := readRecordJSON(filepath.Join(rawDir, e.Name()))
		if err != nil {
			zap.L().Warn("validate: record skipped", zap.String("file", e.Name()), zap.Error(err))
			continue
		}

		checked, rep := rc.Reconcile(schema, rec)
		if rep.Changed() {
			repaired++
			zap.L().Info("validate: record repaired",
				zap.String("file", e.Name()),
				zap.Strings("added", rep.Added),
				zap.Any("renamed", rep.Renamed),
				zap.Strings("deleted", rep.Deleted),
			)
		}

		if err := writeRecordJSON(filepath.Join(checkedDir, e.Name()), checked); err != nil {
			return err
		}
		done++
	}

	if done == 0 {
		return eris.Errorf("validate: no raw extraction results in %s, run 'extract' first", rawDir)
	}
	fmt.Printf("Validated %d records (%d needed repair)\n", done, repaired)
	return nil
}
