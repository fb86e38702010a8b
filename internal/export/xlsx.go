// Package export writes reconciled records to tabular form: one workbook
// per report, plus a corpus-wide combined workbook.
package export

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/imagendo/radeval/internal/fetcher"
	"github.com/imagendo/radeval/internal/model"
)

// RecordSuffix is the filename suffix for per-report extracted workbooks.
const RecordSuffix = "_extracted_data.xlsx"

// RecordFileName returns the workbook filename for a report's display id.
func RecordFileName(displayID string) string {
	return displayID + RecordSuffix
}

// WriteRecordXLSX writes a single reconciled record as a one-row workbook:
// a header row in canonical schema order and one value row. The downstream
// scorer reads this back as the extracted table.
func WriteRecordXLSX(path string, schema *model.Schema, rec model.Record) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	values := sheet.AddRow()
	for _, field := range schema.Fields() {
		header.AddCell().Value = field.Name
		values.AddCell().Value = rec[field.Name]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir for %s", path)
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

// Combine merges every per-report workbook in dir into a single corpus
// workbook. The header is the union of all columns: the first workbook's
// order first, then any new columns in order of appearance. Rows keep the
// sorted filename order for reproducible output.
func Combine(dir, outPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return eris.Wrapf(err, "export: read dir %s", dir)
	}

	// A previously combined workbook may live in the same directory; it is
	// never an input.
	outName := filepath.Base(outPath)
	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == outName || !strings.HasSuffix(e.Name(), RecordSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return eris.Errorf("export: no extracted workbooks in %s", dir)
	}
	sort.Strings(names)

	var columns []string
	colIdx := make(map[string]int)
	type rowRecord map[string]string
	var rows []rowRecord

	for _, name := range names {
		table, err := fetcher.ReadTable(filepath.Join(dir, name), fetcher.XLSXOptions{})
		if err != nil {
			return eris.Wrapf(err, "export: combine %s", name)
		}
		for _, c := range table.Columns {
			if _, ok := colIdx[c]; !ok {
				colIdx[c] = len(columns)
				columns = append(columns, c)
			}
		}
		for i := range table.Rows {
			rec := make(rowRecord, len(table.Columns))
			for j, c := range table.Columns {
				rec[c] = table.Cell(i, j)
			}
			rows = append(rows, rec)
		}
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}
	header := sheet.AddRow()
	for _, c := range columns {
		header.AddCell().Value = c
	}
	for _, rec := range rows {
		row := sheet.AddRow()
		for _, c := range columns {
			row.AddCell().Value = rec[c]
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir for %s", outPath)
	}
	if err := f.Save(outPath); err != nil {
		return eris.Wrapf(err, "export: save combined workbook %s", outPath)
	}
	return nil
}
