package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/imagendo/radeval/internal/dataset"
	"github.com/imagendo/radeval/internal/extract"
	"github.com/imagendo/radeval/internal/model"
	"github.com/imagendo/radeval/internal/store"
)

const recordJSONSuffix = "_extracted_data.json"

func recordJSONName(displayID string) string {
	return displayID + recordJSONSuffix
}

func loadDataset(name string) (dataset.Dataset, error) {
	m, err := dataset.LoadManifest(cfg.DatasetsFile)
	if err != nil {
		return dataset.Dataset{}, err
	}
	return m.Get(name)
}

// newRegistry wires the configured providers. A provider without an API key
// stays unregistered so that selecting it fails with a clear error.
func newRegistry() *extract.Registry {
	reg := extract.NewRegistry()

	var limiter *rate.Limiter
	if cfg.Providers.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Providers.RateLimit), 1)
	}

	if cfg.Providers.Anthropic.Key != "" {
		reg.Register(extract.NewAnthropicProvider(cfg.Providers.Anthropic, cfg.Providers.MaxTokens, limiter))
	}
	if cfg.Providers.OpenAI.Key != "" {
		reg.Register(extract.NewOpenAIProvider(cfg.Providers.OpenAI, cfg.Providers.MaxTokens, limiter))
	}

	return reg
}

// providerModel resolves the model identifier for a provider name from
// config, used by commands that locate result directories without running
// an extraction.
func providerModel(provider string) (string, error) {
	switch provider {
	case "anthropic":
		return cfg.Providers.Anthropic.Model, nil
	case "openai":
		return cfg.Providers.OpenAI.Model, nil
	default:
		return "", eris.Errorf("unknown provider %q (known: anthropic, openai)", provider)
	}
}

// listReportPDFs returns the source report filenames of a dataset, sorted.
func listReportPDFs(ds dataset.Dataset) ([]string, error) {
	pattern, err := ds.CompilePDFPattern()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(ds.ReportPDFDir)
	if err != nil {
		return nil, eris.Wrapf(err, "read report dir %s", ds.ReportPDFDir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !pattern.MatchString(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// displayIDFromFile derives the display-form report id from a result or
// source filename by stripping the known suffix and renormalizing.
func displayIDFromFile(ds dataset.Dataset, name, suffix string) string {
	base := strings.TrimSuffix(name, suffix)
	return ds.DisplayID(model.NormalizeID(base))
}

func writeRecordJSON(path string, rec model.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "marshal record %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "create dir for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write record %s", path)
	}
	return nil
}

func readRecordJSON(path string) (model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read record %s", path)
	}
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, eris.Wrapf(err, "parse record %s", path)
	}
	return rec, nil
}

func openStore() (store.Store, error) {
	s, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
