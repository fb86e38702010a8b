package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordUnmarshalCoercesScalars(t *testing.T) {
	raw := `{
		"Report ID": "RRI 002",
		"Cyst size (mm)": 14.5,
		"Lesion count": 2,
		"Adenomyosis": true,
		"Deep lesions": false,
		"Comment": null
	}`

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	assert.Equal(t, "RRI 002", rec["Report ID"])
	assert.Equal(t, "14.5", rec["Cyst size (mm)"])
	assert.Equal(t, "2", rec["Lesion count"])
	assert.Equal(t, "true", rec["Adenomyosis"])
	assert.Equal(t, "false", rec["Deep lesions"])
	assert.Equal(t, "", rec["Comment"])
}

func TestRecordUnmarshalPreservesNumberText(t *testing.T) {
	// json.Number keeps the literal; no float round-trip like 14.100000000001.
	var rec Record
	require.NoError(t, json.Unmarshal([]byte(`{"v": 14.1}`), &rec))
	assert.Equal(t, "14.1", rec["v"])
}

func TestRecordUnmarshalRejectsNested(t *testing.T) {
	var rec Record
	err := json.Unmarshal([]byte(`{"Findings": {"left": 1}}`), &rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a scalar")

	err = json.Unmarshal([]byte(`{"Findings": [1, 2]}`), &rec)
	require.Error(t, err)
}

func TestRecordCloneIndependent(t *testing.T) {
	rec := Record{"a": "1"}
	clone := rec.Clone()
	clone["a"] = "2"
	assert.Equal(t, "1", rec["a"])
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RRI 002", "RRI002"},
		{"RRI002", "RRI002"},
		{" RRI  002 ", "RRI002"},
		{"RRI\t002", "RRI002"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeID(tt.in), "NormalizeID(%q)", tt.in)
	}
}
