// Package config loads the radeval configuration from file and environment
// and initializes the global logger.
package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	DatasetsFile string          `yaml:"datasets_file" mapstructure:"datasets_file"`
	Results      ResultsConfig   `yaml:"results" mapstructure:"results"`
	Reconcile    ReconcileConfig `yaml:"reconcile" mapstructure:"reconcile"`
	Compare      CompareConfig   `yaml:"compare" mapstructure:"compare"`
	Evaluate     EvaluateConfig  `yaml:"evaluate" mapstructure:"evaluate"`
	Providers    ProvidersConfig `yaml:"providers" mapstructure:"providers"`
	Store        StoreConfig     `yaml:"store" mapstructure:"store"`
	Log          LogConfig       `yaml:"log" mapstructure:"log"`
}

// ResultsConfig describes the on-disk results layout. Per-report artifacts
// live under provider/model/dataset subtrees so runs against different
// models never collide.
type ResultsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// RawJSONDir is where unvalidated LLM responses land.
func (r ResultsConfig) RawJSONDir(provider, model, dataset string) string {
	return filepath.Join(r.Dir, "extracted_data", "json_raw", provider, model, dataset)
}

// CheckedJSONDir is where schema-reconciled records land.
func (r ResultsConfig) CheckedJSONDir(provider, model, dataset string) string {
	return filepath.Join(r.Dir, "extracted_data", "json_checked", provider, model, dataset)
}

// ExcelDir is where per-report tabular conversions land.
func (r ResultsConfig) ExcelDir(provider, model, dataset string) string {
	return filepath.Join(r.Dir, "extracted_data", "excel", provider, model, dataset)
}

// AccuracyDir is where per-report accuracy artifacts land.
func (r ResultsConfig) AccuracyDir(provider, model, dataset string) string {
	return filepath.Join(r.Dir, "accuracy_reports", provider, model, dataset)
}

// AnalysisDir is where corpus-level summaries land.
func (r ResultsConfig) AnalysisDir(provider, model, dataset string) string {
	return filepath.Join(r.Dir, "overall_analysis", provider, model, dataset)
}

// PageImagesDir is where extracted PDF page images land.
func (r ResultsConfig) PageImagesDir(dataset string) string {
	return filepath.Join(r.Dir, "processed_images", dataset)
}

// ReconcileConfig tunes schema reconciliation.
type ReconcileConfig struct {
	// SimilarityThreshold is the minimum normalized edit similarity for an
	// extra key to count as a misspelling of a schema key.
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// CompareConfig tunes the cell equality oracle.
type CompareConfig struct {
	// NAStrings are whole-cell values collapsed to the missing marker
	// during normalization (case-insensitive).
	NAStrings []string `yaml:"na_strings" mapstructure:"na_strings"`
	// VacuousValues are present-but-empty values treated as equal to a
	// missing counterpart. A literal "0" is also vacuous: the data-entry
	// convention uses "0" for "no abnormality" in descriptive fields.
	VacuousValues []string `yaml:"vacuous_values" mapstructure:"vacuous_values"`
	TrueSynonyms  []string `yaml:"true_synonyms" mapstructure:"true_synonyms"`
	FalseSynonyms []string `yaml:"false_synonyms" mapstructure:"false_synonyms"`
	// RelTol and AbsTol drive the epsilon comparison for numeric cells.
	RelTol float64 `yaml:"rel_tol" mapstructure:"rel_tol"`
	AbsTol float64 `yaml:"abs_tol" mapstructure:"abs_tol"`
}

// EvaluateConfig tunes report scoring.
type EvaluateConfig struct {
	// IDColumns are the accepted report-identifier header names, tried in
	// order.
	IDColumns []string `yaml:"id_columns" mapstructure:"id_columns"`
	// ColumnRenames maps known-misspelled column names to their canonical
	// form before the two tables are intersected.
	ColumnRenames map[string]string `yaml:"column_renames" mapstructure:"column_renames"`
	// Concurrency bounds the batch evaluation fan-out.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ProvidersConfig holds LLM provider settings.
type ProvidersConfig struct {
	Anthropic      AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI         OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	MaxTokens      int             `yaml:"max_tokens" mapstructure:"max_tokens"`
	PagesPerReport int             `yaml:"pages_per_report" mapstructure:"pages_per_report"`
	// RateLimit is extraction requests per second, shared across providers.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// StoreConfig configures evaluation-run persistence.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RADEVAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	// Column renames are case-sensitive header text; viper lowercases map
	// keys, so the default table is applied here instead of via SetDefault.
	if len(cfg.Evaluate.ColumnRenames) == 0 {
		cfg.Evaluate.ColumnRenames = DefaultColumnRenames()
	}

	return &cfg, nil
}

// DefaultColumnRenames maps the known ground-truth header misspellings to
// their canonical template names.
func DefaultColumnRenames() map[string]string {
	return map[string]string{
		"Right uteroscaral nodule size (mm)":      "Right uterosacral nodule size (mm)",
		"Endometrioal lesions Identified Comment": "Endometrial lesions Identified Comment",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("datasets_file", "datasets.yaml")
	v.SetDefault("results.dir", "results")
	v.SetDefault("reconcile.similarity_threshold", 0.8)
	v.SetDefault("compare.na_strings", []string{
		"nan", "none", "na", "n/a", "nat", "unspecified", "not specified",
	})
	v.SetDefault("compare.vacuous_values", []string{
		"unspecified", "not specified", "n/a", "na", "", "null",
	})
	v.SetDefault("compare.true_synonyms", []string{
		"yes", "present", "true", "active", "positive", "complete", "conventional",
	})
	v.SetDefault("compare.false_synonyms", []string{
		"no", "absent", "false", "inactive", "negative", "normal",
	})
	v.SetDefault("compare.rel_tol", 1e-5)
	v.SetDefault("compare.abs_tol", 0.01)
	v.SetDefault("evaluate.id_columns", []string{"Report ID", "Report"})
	v.SetDefault("evaluate.concurrency", 4)
	v.SetDefault("providers.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("providers.openai.model", "gpt-4-turbo")
	v.SetDefault("providers.max_tokens", 4000)
	v.SetDefault("providers.pages_per_report", 4)
	v.SetDefault("providers.rate_limit", 1)
	v.SetDefault("store.path", "radeval.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
