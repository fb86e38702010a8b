package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datasets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
datasets:
  rri:
    display_name: Pelvic MRI reports
    ground_truth_xlsx: data/ground_truth.xlsx
    ground_truth_sheet: Sheet1
    template_json: data/template.json
    report_pdf_dir: data/reports
    id_prefix_len: 3
    pdf_pattern: '(?i)^RRI\s?\d{3}\.pdf$'
  other:
    ground_truth_xlsx: other/gt.xlsx
    template_json: other/template.json
    report_pdf_dir: other/reports
`)

	m, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"other", "rri"}, m.Names())

	ds, err := m.Get("rri")
	require.NoError(t, err)
	assert.Equal(t, "rri", ds.Name)
	assert.Equal(t, "Pelvic MRI reports", ds.DisplayName)
	assert.Equal(t, "data/ground_truth.xlsx", ds.GroundTruthXLSX)
	assert.Equal(t, "Sheet1", ds.GroundTruthSheet)

	// Defaults fill in for the sparse entry.
	other, err := m.Get("other")
	require.NoError(t, err)
	assert.Equal(t, "other", other.DisplayName)
	assert.Equal(t, 3, other.IDPrefixLen)
	assert.NotEmpty(t, other.PDFPattern)
}

func TestLoadManifestEmptyFatal(t *testing.T) {
	path := writeManifest(t, "datasets: {}\n")
	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no datasets")
}

func TestGetUnknownListsKnown(t *testing.T) {
	path := writeManifest(t, `
datasets:
  rri:
    ground_truth_xlsx: gt.xlsx
    template_json: t.json
    report_pdf_dir: reports
`)
	m, err := LoadManifest(path)
	require.NoError(t, err)

	_, err = m.Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rri")
}

func TestDisplayID(t *testing.T) {
	ds := Dataset{IDPrefixLen: 3}

	assert.Equal(t, "RRI 002", ds.DisplayID("RRI002"))
	assert.Equal(t, "RRI 002", ds.DisplayID("RRI 002"))
	assert.Equal(t, "RRI", ds.DisplayID("RRI"))
	assert.Equal(t, "x", Dataset{}.DisplayID("x"))
}

func TestCompilePDFPattern(t *testing.T) {
	ds := Dataset{PDFPattern: `(?i)^RRI\s?\d{3}\.pdf$`}
	re, err := ds.CompilePDFPattern()
	require.NoError(t, err)

	assert.True(t, re.MatchString("RRI 002.pdf"))
	assert.True(t, re.MatchString("rri002.PDF"))
	assert.False(t, re.MatchString("RRI 2.pdf"))
	assert.False(t, re.MatchString("notes.txt"))

	_, err = Dataset{PDFPattern: "("}.CompilePDFPattern()
	assert.Error(t, err)
}
