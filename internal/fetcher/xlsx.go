// Package fetcher reads tabular inputs (ground truth and extracted data
// workbooks) into the shared Table model.
package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/imagendo/radeval/internal/model"
)

// XLSXOptions configures the XLSX reader.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadTable reads an XLSX file into a Table. The first row is the header;
// every following row is padded to the header width so cell lookups by
// column index never run short.
func ReadTable(path string, opts XLSXOptions) (*model.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open workbook %s", path)
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("fetcher: workbook %s sheet is empty", path)
	}

	header := rowToStrings(sheet.Rows[0], 0)
	if len(header) == 0 {
		return nil, eris.Errorf("fetcher: workbook %s has an empty header row", path)
	}

	table := &model.Table{Columns: header}
	for _, row := range sheet.Rows[1:] {
		table.Rows = append(table.Rows, rowToStrings(row, len(header)))
	}

	return table, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("fetcher: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("fetcher: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

// rowToStrings converts a row's cells to strings, padding to width when the
// stored row is shorter than the header.
func rowToStrings(row *xlsx.Row, width int) []string {
	n := len(row.Cells)
	if width > n {
		n = width
	}
	cells := make([]string, n)
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
