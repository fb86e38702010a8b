package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, row := range rows {
			r := sheet.AddRow()
			for _, cell := range row {
				r.AddCell().Value = cell
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadTable(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Sheet1": {
			{"Report ID", "Adenomyosis", "Cyst size (mm)"},
			{"RRI 001", "1", "14"},
			{"RRI 002", "0"}, // short row
		},
	})

	table, err := ReadTable(path, XLSXOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Report ID", "Adenomyosis", "Cyst size (mm)"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"RRI 001", "1", "14"}, table.Rows[0])
	// Short rows pad to header width.
	assert.Equal(t, []string{"RRI 002", "0", ""}, table.Rows[1])
}

func TestReadTableBySheetName(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Data": {
			{"Report ID"},
			{"RRI 001"},
		},
	})

	table, err := ReadTable(path, XLSXOptions{SheetName: "Data"})
	require.NoError(t, err)
	assert.Equal(t, "RRI 001", table.Cell(0, 0))

	_, err = ReadTable(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Missing" not found`)
}

func TestReadTableSheetIndexOutOfRange(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		"Sheet1": {{"a"}, {"1"}},
	})

	_, err := ReadTable(path, XLSXOptions{SheetIndex: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestReadTableEmptySheetFatal(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{"Sheet1": {}})

	_, err := ReadTable(path, XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.xlsx"), XLSXOptions{})
	assert.Error(t, err)
}
