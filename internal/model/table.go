package model

// Table is a simple rows × named-columns view of a worksheet. Cells are
// strings; rows are padded to the header width on load.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IdentifierColumn tries each accepted header name in order and returns the
// first match. The ordered alias list comes from configuration.
func (t *Table) IdentifierColumn(aliases []string) (int, string, bool) {
	for _, alias := range aliases {
		if i := t.ColumnIndex(alias); i >= 0 {
			return i, alias, true
		}
	}
	return -1, "", false
}

// FindRow returns the index of the row whose identifier cell matches the
// given report id after whitespace normalization, or -1.
func (t *Table) FindRow(idCol int, reportID string) int {
	want := NormalizeID(reportID)
	for i, row := range t.Rows {
		if idCol < len(row) && NormalizeID(row[idCol]) == want {
			return i
		}
	}
	return -1
}

// Cell returns the cell at (row, col), or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// RenamedColumns returns a copy of the header with the static rename table
// applied. Unknown names pass through unchanged.
func (t *Table) RenamedColumns(renames map[string]string) []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if canonical, ok := renames[c]; ok {
			out[i] = canonical
		} else {
			out[i] = c
		}
	}
	return out
}
