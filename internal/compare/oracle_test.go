package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	o := NewOracle(DefaultConfig())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", MissingMarker},
		{"whitespace only", "   ", MissingMarker},
		{"nan literal", "NaN", MissingMarker},
		{"none literal", "None", MissingMarker},
		{"na slash", "N/A", MissingMarker},
		{"unspecified", "Unspecified", MissingMarker},
		{"plain value trimmed", "  3.5 ", "3.5"},
		{"zero survives", "0", "0"},
		{"text survives", "Left ovary", "Left ovary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.Normalize(tt.in))
		})
	}
}

func TestEqual(t *testing.T) {
	o := NewOracle(DefaultConfig())

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		// Rule 1: both missing.
		{"both missing", MissingMarker, MissingMarker, true},

		// Rule 2: one missing.
		{"missing vs vacuous", MissingMarker, "unspecified", true},
		{"missing vs null literal", MissingMarker, "null", true},
		{"missing vs zero", MissingMarker, "0", true},
		{"missing vs substantive", MissingMarker, "3.5", false},
		{"missing vs text", MissingMarker, "bilateral", false},

		// Rule 3: boolean synonyms.
		{"yes vs 1", "Yes", "1", true},
		{"present vs true", "Present", "true", true},
		{"present vs active", "Present", "Active", true},
		{"no vs 0", "No", "0", true},
		{"absent vs no", "Absent", "No", true},
		{"normal vs 0", "Normal", "0", true},
		{"yes vs no", "Yes", "No", false},
		{"1 vs absent", "1", "Absent", false},
		{"positive vs 0", "Positive", "0", false},

		// Rule 4: numeric tolerance.
		{"identical numbers", "3.5", "3.5", true},
		{"trailing zeros", "3.5", "3.500", true},
		{"integer vs decimal", "7", "7.0", true},
		{"formatting noise", "7.001", "7.0", true},
		{"clearly different", "7.5", "9", false},
		{"within relative tolerance", "100000", "100000.5", true},
		{"outside tolerance", "3.5", "3.6", false},
		{"zero forms", "0", "0.0", true},
		{"one forms", "1", "1.0", true},
		{"negative numbers", "-2.5", "-2.5000", true},

		// Rule 5: string fallback.
		{"case insensitive text", "Left Ovary", "left ovary", true},
		{"trimmed text", " bilateral ", "bilateral", true},
		{"different text", "left", "right", false},
		{"number vs text", "3.5", "three point five", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.Equal(tt.a, tt.b), "Equal(%q, %q)", tt.a, tt.b)
			assert.Equal(t, tt.want, o.Equal(tt.b, tt.a), "Equal(%q, %q) must be symmetric", tt.b, tt.a)
		})
	}
}

func TestEqualBooleanBeatsNumeric(t *testing.T) {
	o := NewOracle(DefaultConfig())

	// "0" and "1" read as booleans before any numeric comparison, so a
	// polarity mismatch is authoritative even though both parse as numbers.
	assert.False(t, o.Equal("0", "1"))
	assert.True(t, o.Equal("1", "Yes"))
	assert.True(t, o.Equal("0", "No"))
}

func TestEqualNormalizedInputs(t *testing.T) {
	o := NewOracle(DefaultConfig())

	// The scorer always normalizes first; NA strings become the marker and
	// compare equal to a vacuous counterpart.
	assert.True(t, o.Equal(o.Normalize("NaN"), o.Normalize("")))
	assert.True(t, o.Equal(o.Normalize("nan"), o.Normalize("0")))
	assert.False(t, o.Equal(o.Normalize("NaN"), o.Normalize("7")))
}
