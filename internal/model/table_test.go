package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableIdentifierColumn(t *testing.T) {
	table := &Table{Columns: []string{"Notes", "Report", "Cyst size (mm)"}}

	i, name, ok := table.IdentifierColumn([]string{"Report ID", "Report"})
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	assert.Equal(t, "Report", name)

	_, _, ok = table.IdentifierColumn([]string{"Case ID"})
	assert.False(t, ok)
}

func TestTableFindRowNormalizesIDs(t *testing.T) {
	table := &Table{
		Columns: []string{"Report ID"},
		Rows:    [][]string{{"RRI 001"}, {"RRI 002"}},
	}

	assert.Equal(t, 1, table.FindRow(0, "RRI002"))
	assert.Equal(t, 1, table.FindRow(0, "RRI 002"))
	assert.Equal(t, -1, table.FindRow(0, "RRI999"))
}

func TestTableCellShortRow(t *testing.T) {
	table := &Table{
		Columns: []string{"a", "b"},
		Rows:    [][]string{{"only"}},
	}

	assert.Equal(t, "only", table.Cell(0, 0))
	assert.Equal(t, "", table.Cell(0, 1))
	assert.Equal(t, "", table.Cell(5, 0))
}

func TestTableRenamedColumns(t *testing.T) {
	table := &Table{Columns: []string{"Right uteroscaral nodule size (mm)", "Report ID"}}

	out := table.RenamedColumns(map[string]string{
		"Right uteroscaral nodule size (mm)": "Right uterosacral nodule size (mm)",
	})
	assert.Equal(t, []string{"Right uterosacral nodule size (mm)", "Report ID"}, out)
	// Original header untouched.
	assert.Equal(t, "Right uteroscaral nodule size (mm)", table.Columns[0])
}
