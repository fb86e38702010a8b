package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagendo/radeval/internal/fetcher"
	"github.com/imagendo/radeval/internal/model"
)

func testSchema(t *testing.T) *model.Schema {
	t.Helper()
	s, err := model.NewSchema([]model.SchemaField{
		{Name: "Report ID"},
		{Name: "Adenomyosis", Default: "0"},
		{Name: "Cyst size (mm)"},
	})
	require.NoError(t, err)
	return s
}

func TestWriteRecordXLSXRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RecordFileName("RRI 002"))

	rec := model.Record{
		"Report ID":      "RRI 002",
		"Adenomyosis":    "1",
		"Cyst size (mm)": "14.5",
	}
	require.NoError(t, WriteRecordXLSX(path, testSchema(t), rec))

	table, err := fetcher.ReadTable(path, fetcher.XLSXOptions{})
	require.NoError(t, err)

	// Header follows canonical schema order, not map order.
	assert.Equal(t, []string{"Report ID", "Adenomyosis", "Cyst size (mm)"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"RRI 002", "1", "14.5"}, table.Rows[0])
}

func TestWriteRecordXLSXCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", RecordFileName("RRI 001"))
	require.NoError(t, WriteRecordXLSX(path, testSchema(t), model.Record{"Report ID": "RRI 001"}))

	table, err := fetcher.ReadTable(path, fetcher.XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, "RRI 001", table.Cell(0, 0))
}

func TestCombine(t *testing.T) {
	dir := t.TempDir()
	schema := testSchema(t)

	require.NoError(t, WriteRecordXLSX(filepath.Join(dir, RecordFileName("RRI 002")), schema, model.Record{
		"Report ID": "RRI 002", "Adenomyosis": "0", "Cyst size (mm)": "",
	}))
	require.NoError(t, WriteRecordXLSX(filepath.Join(dir, RecordFileName("RRI 001")), schema, model.Record{
		"Report ID": "RRI 001", "Adenomyosis": "1", "Cyst size (mm)": "14",
	}))

	out := filepath.Join(dir, "combined_extracted_data.xlsx")
	require.NoError(t, Combine(dir, out))

	table, err := fetcher.ReadTable(out, fetcher.XLSXOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Report ID", "Adenomyosis", "Cyst size (mm)"}, table.Columns)
	require.Len(t, table.Rows, 2)
	// Rows follow sorted filename order.
	assert.Equal(t, "RRI 001", table.Rows[0][0])
	assert.Equal(t, "RRI 002", table.Rows[1][0])

	// Recombining must not ingest the previous combined workbook.
	require.NoError(t, Combine(dir, out))
	table, err = fetcher.ReadTable(out, fetcher.XLSXOptions{})
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
}

func TestCombineEmptyDirFatal(t *testing.T) {
	err := Combine(t.TempDir(), filepath.Join(t.TempDir(), "out.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no extracted workbooks")
}

func TestRecordFileName(t *testing.T) {
	assert.Equal(t, "RRI 002_extracted_data.xlsx", RecordFileName("RRI 002"))
}
