package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagendo/radeval/internal/model"
)

func testSchema(t *testing.T) *model.Schema {
	t.Helper()
	s, err := model.NewSchema([]model.SchemaField{
		{Name: "Report ID", Default: ""},
		{Name: "Endometrial lesions Identified", Default: "0"},
		{Name: "Cyst size (mm)", Default: ""},
		{Name: "Lesion count", Default: "0"},
	})
	require.NoError(t, err)
	return s
}

func TestReconcileExactMatchUntouched(t *testing.T) {
	rc := New(DefaultConfig())
	schema := testSchema(t)

	rec := model.Record{
		"Report ID":                      "RRI 002",
		"Endometrial lesions Identified": "1",
		"Cyst size (mm)":                 "14",
		"Lesion count":                   "2",
	}

	out, rep := rc.Reconcile(schema, rec)
	assert.False(t, rep.Changed())
	assert.Equal(t, rec, out)
}

func TestReconcileFillsMissingWithDefaults(t *testing.T) {
	rc := New(DefaultConfig())
	schema := testSchema(t)

	out, rep := rc.Reconcile(schema, model.Record{"Report ID": "RRI 002"})

	require.True(t, rep.Changed())
	assert.Equal(t, []string{"Endometrial lesions Identified", "Cyst size (mm)", "Lesion count"}, rep.Added)
	assert.Equal(t, "0", out["Endometrial lesions Identified"])
	assert.Equal(t, "", out["Cyst size (mm)"])
	assert.ElementsMatch(t, schema.Keys(), out.Keys())
}

func TestReconcileRenamesMisspelledKey(t *testing.T) {
	rc := New(DefaultConfig())
	schema := testSchema(t)

	rec := model.Record{
		"Report ID":                       "RRI 002",
		"Endometrioal lesions Identified": "1",
		"Cyst size (mm)":                  "14",
		"Lesion count":                    "2",
	}

	out, rep := rc.Reconcile(schema, rec)

	assert.Equal(t, map[string]string{
		"Endometrioal lesions Identified": "Endometrial lesions Identified",
	}, rep.Renamed)
	// The extracted value moves to the schema key, beating the default.
	assert.Equal(t, "1", out["Endometrial lesions Identified"])
	assert.NotContains(t, out, "Endometrioal lesions Identified")
	assert.ElementsMatch(t, schema.Keys(), out.Keys())
}

func TestReconcileDeletesUnrelatedKey(t *testing.T) {
	rc := New(DefaultConfig())
	schema := testSchema(t)

	rec := model.Record{
		"Report ID":      "RRI 002",
		"Patient weight": "70",
	}

	out, rep := rc.Reconcile(schema, rec)

	assert.Equal(t, []string{"Patient weight"}, rep.Deleted)
	assert.NotContains(t, out, "Patient weight")
	assert.ElementsMatch(t, schema.Keys(), out.Keys())
}

func TestReconcileCollisionHigherSimilarityWins(t *testing.T) {
	rc := New(DefaultConfig())
	schema := testSchema(t)

	// Both extras are plausible misspellings of "Lesion count"; the one with
	// higher similarity keeps the slot, the other is dropped.
	rec := model.Record{
		"Report ID":     "RRI 002",
		"Lesion cont":   "3",
		"Lesion countt": "2",
	}

	out, rep := rc.Reconcile(schema, rec)

	assert.Equal(t, map[string]string{"Lesion countt": "Lesion count"}, rep.Renamed)
	assert.Contains(t, rep.Deleted, "Lesion cont")
	assert.Equal(t, "2", out["Lesion count"])
	assert.ElementsMatch(t, schema.Keys(), out.Keys())
}

func TestReconcileDeterministic(t *testing.T) {
	rc := New(DefaultConfig())
	schema := testSchema(t)

	rec := model.Record{
		"Report ID":     "RRI 002",
		"Lesion cont":   "3",
		"Lesion countt": "2",
		"Unrelated":     "x",
	}

	first, firstRep := rc.Reconcile(schema, rec)
	for i := 0; i < 10; i++ {
		out, rep := rc.Reconcile(schema, rec)
		assert.Equal(t, first, out)
		assert.Equal(t, firstRep.Renamed, rep.Renamed)
		assert.Equal(t, firstRep.Deleted, rep.Deleted)
	}
}

func TestReconcileInputNotMutated(t *testing.T) {
	rc := New(DefaultConfig())
	schema := testSchema(t)

	rec := model.Record{"Report ID": "RRI 002", "Unrelated": "x"}
	_, _ = rc.Reconcile(schema, rec)

	assert.Equal(t, model.Record{"Report ID": "RRI 002", "Unrelated": "x"}, rec)
}

func TestReconcileBelowThresholdIsDeleted(t *testing.T) {
	rc := New(DefaultConfig())
	schema := testSchema(t)

	// "Cyst" alone is far from any schema key.
	_, rep := rc.Reconcile(schema, model.Record{"Report ID": "RRI 002", "Cyst": "1"})
	assert.Empty(t, rep.Renamed)
	assert.Equal(t, []string{"Cyst"}, rep.Deleted)
}
