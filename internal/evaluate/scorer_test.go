package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagendo/radeval/internal/compare"
	"github.com/imagendo/radeval/internal/model"
)

func newTestScorer() *Scorer {
	return NewScorer(compare.NewOracle(compare.DefaultConfig()), DefaultConfig())
}

func TestScorePerfectMatch(t *testing.T) {
	truth := &model.Table{
		Columns: []string{"Report ID", "Adenomyosis", "Cyst size (mm)"},
		Rows:    [][]string{{"RRI 001", "1", "14"}, {"RRI 002", "0", ""}},
	}
	extracted := &model.Table{
		Columns: []string{"Report ID", "Adenomyosis", "Cyst size (mm)"},
		Rows:    [][]string{{"RRI 002", "No", "nan"}},
	}

	res, err := newTestScorer().Score(truth, extracted, "RRI 002", "anthropic", "claude")
	require.NoError(t, err)

	// "0" vs "No" is a boolean match; "" vs "nan" are both missing; the id
	// cells match after whitespace normalization.
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 0, res.Incorrect)
	assert.InDelta(t, 1.0, res.Accuracy, 1e-9)
	assert.Empty(t, res.Disagreements)
	assert.Equal(t, "anthropic", res.Provider)
	assert.Equal(t, "claude", res.Model)
}

func TestScoreRecordsDisagreements(t *testing.T) {
	truth := &model.Table{
		Columns: []string{"Report ID", "Adenomyosis", "Cyst size (mm)"},
		Rows:    [][]string{{"RRI 002", "1", "14"}},
	}
	extracted := &model.Table{
		Columns: []string{"Report ID", "Adenomyosis", "Cyst size (mm)"},
		Rows:    [][]string{{"RRI 002", "0", "15"}},
	}

	res, err := newTestScorer().Score(truth, extracted, "RRI002", "", "")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 2, res.Incorrect)
	assert.InDelta(t, 1.0/3.0, res.Accuracy, 1e-9)

	require.Len(t, res.Disagreements, 2)
	// Disagreements carry display values, sorted by column via the common
	// column ordering.
	byCol := map[string]model.Disagreement{}
	for _, d := range res.Disagreements {
		byCol[d.Column] = d
	}
	assert.Equal(t, "1", byCol["Adenomyosis"].TrueValue)
	assert.Equal(t, "0", byCol["Adenomyosis"].ExtractedValue)
	assert.Equal(t, "14", byCol["Cyst size (mm)"].TrueValue)
	assert.Equal(t, "15", byCol["Cyst size (mm)"].ExtractedValue)
}

func TestScoreIntersectsColumns(t *testing.T) {
	truth := &model.Table{
		Columns: []string{"Report ID", "Only in truth", "Shared"},
		Rows:    [][]string{{"RRI 002", "x", "1"}},
	}
	extracted := &model.Table{
		Columns: []string{"Report ID", "Shared", "Only in extraction"},
		Rows:    [][]string{{"RRI 002", "1", "y"}},
	}

	res, err := newTestScorer().Score(truth, extracted, "RRI 002", "", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Report ID", "Shared"}, res.Columns)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Correct)
}

func TestScoreAppliesColumnRenames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColumnRenames = map[string]string{
		"Right uteroscaral nodule size (mm)": "Right uterosacral nodule size (mm)",
	}
	scorer := NewScorer(compare.NewOracle(compare.DefaultConfig()), cfg)

	truth := &model.Table{
		Columns: []string{"Report ID", "Right uteroscaral nodule size (mm)"},
		Rows:    [][]string{{"RRI 002", "8"}},
	}
	extracted := &model.Table{
		Columns: []string{"Report ID", "Right uterosacral nodule size (mm)"},
		Rows:    [][]string{{"RRI 002", "8"}},
	}

	res, err := scorer.Score(truth, extracted, "RRI 002", "", "")
	require.NoError(t, err)

	// The misspelled ground-truth header standardizes to the canonical name
	// and the column becomes comparable.
	assert.Contains(t, res.Columns, "Right uterosacral nodule size (mm)")
	assert.Equal(t, 2, res.Correct)
}

func TestScoreDeterministic(t *testing.T) {
	truth := &model.Table{
		Columns: []string{"Report ID", "Adenomyosis", "Cyst size (mm)", "Comment"},
		Rows:    [][]string{{"RRI 002", "1", "14", "left"}},
	}
	extracted := &model.Table{
		Columns: []string{"Report ID", "Adenomyosis", "Cyst size (mm)", "Comment"},
		Rows:    [][]string{{"RRI 002", "0", "15", "right"}},
	}

	scorer := newTestScorer()
	first, err := scorer.Score(truth, extracted, "RRI 002", "p", "m")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		res, err := scorer.Score(truth, extracted, "RRI 002", "p", "m")
		require.NoError(t, err)
		assert.Equal(t, first, res)
	}
}

func TestScoreMissingRowFatalForReport(t *testing.T) {
	truth := &model.Table{
		Columns: []string{"Report ID", "a"},
		Rows:    [][]string{{"RRI 001", "1"}},
	}
	extracted := &model.Table{
		Columns: []string{"Report ID", "a"},
		Rows:    [][]string{{"RRI 002", "1"}},
	}

	_, err := newTestScorer().Score(truth, extracted, "RRI 002", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in ground truth")
}

func TestScoreNoIdentifierColumn(t *testing.T) {
	truth := &model.Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}
	extracted := &model.Table{Columns: []string{"Report ID", "a"}, Rows: [][]string{{"RRI 002", "1"}}}

	_, err := newTestScorer().Score(truth, extracted, "RRI 002", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identifier column")
}

func TestScoreAlternateIDColumnName(t *testing.T) {
	// Ground truth uses "Report", extraction uses "Report ID"; both are
	// accepted aliases.
	truth := &model.Table{
		Columns: []string{"Report", "a"},
		Rows:    [][]string{{"RRI 002", "1"}},
	}
	extracted := &model.Table{
		Columns: []string{"Report ID", "a"},
		Rows:    [][]string{{"RRI002", "1"}},
	}

	res, err := newTestScorer().Score(truth, extracted, "RRI 002", "", "")
	require.NoError(t, err)
	// Only "a" is common; the differently-named id columns drop out.
	assert.Equal(t, []string{"a"}, res.Columns)
	assert.Equal(t, 1, res.Correct)
}
