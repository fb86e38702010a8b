// Package dataset loads the corpus manifests that describe each evaluation
// dataset: where its ground truth, template and source reports live and
// how its report ids are formatted.
package dataset

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Dataset describes one evaluation corpus.
type Dataset struct {
	Name             string `yaml:"-"`
	DisplayName      string `yaml:"display_name"`
	GroundTruthXLSX  string `yaml:"ground_truth_xlsx"`
	GroundTruthSheet string `yaml:"ground_truth_sheet"`
	TemplateJSON     string `yaml:"template_json"`
	ReportPDFDir     string `yaml:"report_pdf_dir"`

	// IDPrefixLen is the length of the alphabetic prefix in a report id;
	// the display form inserts a space after it ("RRI002" → "RRI 002"),
	// matching the source filenames and ground-truth data entry.
	IDPrefixLen int `yaml:"id_prefix_len"`
	// PDFPattern matches source report filenames in ReportPDFDir.
	PDFPattern string `yaml:"pdf_pattern"`
}

// Manifest is the full set of configured datasets.
type Manifest struct {
	datasets map[string]Dataset
}

// LoadManifest reads dataset definitions from a YAML file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read manifest %s", path)
	}

	var wrapper struct {
		Datasets map[string]Dataset `yaml:"datasets"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "dataset: parse manifest")
	}
	if len(wrapper.Datasets) == 0 {
		return nil, eris.Errorf("dataset: manifest %s defines no datasets", path)
	}

	for name, ds := range wrapper.Datasets {
		ds.Name = name
		if ds.DisplayName == "" {
			ds.DisplayName = name
		}
		if ds.IDPrefixLen == 0 {
			ds.IDPrefixLen = 3
		}
		if ds.PDFPattern == "" {
			ds.PDFPattern = `(?i)^RRI\s?\d{3}\.pdf$`
		}
		wrapper.Datasets[name] = ds
	}

	return &Manifest{datasets: wrapper.Datasets}, nil
}

// Get returns the named dataset. An unknown name is fatal for the run.
func (m *Manifest) Get(name string) (Dataset, error) {
	ds, ok := m.datasets[name]
	if !ok {
		return Dataset{}, eris.Errorf("dataset: %q is not defined (known: %s)", name, strings.Join(m.Names(), ", "))
	}
	return ds, nil
}

// Names returns the configured dataset names, sorted.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.datasets))
	for n := range m.datasets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DisplayID formats a compact report id into its display form, inserting a
// space after the alphabetic prefix. Ids already containing a space pass
// through unchanged.
func (d Dataset) DisplayID(id string) string {
	if strings.ContainsAny(id, " \t") {
		return id
	}
	if d.IDPrefixLen <= 0 || len(id) <= d.IDPrefixLen {
		return id
	}
	return id[:d.IDPrefixLen] + " " + id[d.IDPrefixLen:]
}

// CompilePDFPattern compiles the dataset's source-filename pattern.
func (d Dataset) CompilePDFPattern() (*regexp.Regexp, error) {
	re, err := regexp.Compile(d.PDFPattern)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: compile pdf pattern %q", d.PDFPattern)
	}
	return re, nil
}
