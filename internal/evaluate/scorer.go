// Package evaluate scores one report's extracted row against its ground
// truth row cell by cell and persists the per-report accuracy artifact.
package evaluate

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/compare"
	"github.com/imagendo/radeval/internal/config"
	"github.com/imagendo/radeval/internal/model"
)

// Scorer aligns ground-truth and extracted tables on a report identifier
// and applies the cell equality oracle over their common columns.
type Scorer struct {
	oracle *compare.Oracle
	cfg    config.EvaluateConfig
}

// DefaultConfig returns the evaluation defaults.
func DefaultConfig() config.EvaluateConfig {
	return config.EvaluateConfig{
		IDColumns:   []string{"Report ID", "Report"},
		Concurrency: 4,
	}
}

// NewScorer builds a Scorer.
func NewScorer(oracle *compare.Oracle, cfg config.EvaluateConfig) *Scorer {
	return &Scorer{oracle: oracle, cfg: cfg}
}

// Score compares the rows identified by reportID. Provider and model are
// opaque identifiers carried into the result for artifact rendering.
//
// Failures here (missing identifier column, missing row, no common
// columns) are fatal for this report only; callers skip the report and
// continue with the rest of the corpus.
func (s *Scorer) Score(truth, extracted *model.Table, reportID, provider, modelName string) (*model.ComparisonResult, error) {
	truthIDCol, truthIDName, ok := truth.IdentifierColumn(s.cfg.IDColumns)
	if !ok {
		return nil, eris.Errorf("evaluate: no report identifier column in ground truth (checked %v)", s.cfg.IDColumns)
	}
	extrIDCol, extrIDName, ok := extracted.IdentifierColumn(s.cfg.IDColumns)
	if !ok {
		return nil, eris.Errorf("evaluate: no report identifier column in extracted data (checked %v)", s.cfg.IDColumns)
	}

	truthRow := truth.FindRow(truthIDCol, reportID)
	if truthRow < 0 {
		return nil, eris.Errorf("evaluate: report %s not found in ground truth", reportID)
	}
	extrRow := extracted.FindRow(extrIDCol, reportID)
	if extrRow < 0 {
		return nil, eris.Errorf("evaluate: report %s not found in extracted data", reportID)
	}

	// Standardize column names, then intersect. Only columns present on
	// both sides are comparable.
	truthCols := truth.RenamedColumns(s.cfg.ColumnRenames)
	extrCols := extracted.RenamedColumns(s.cfg.ColumnRenames)

	truthIdx := columnIndex(truthCols)
	extrIdx := columnIndex(extrCols)

	var common []string
	for name := range truthIdx {
		if _, ok := extrIdx[name]; ok {
			common = append(common, name)
		}
	}
	if len(common) == 0 {
		return nil, eris.Errorf("evaluate: report %s has no common columns between ground truth and extraction", reportID)
	}
	sort.Strings(common)

	res := &model.ComparisonResult{
		ReportID: reportID,
		Provider: provider,
		Model:    modelName,
		Columns:  common,
	}

	idAliases := map[string]bool{truthIDName: true, extrIDName: true}

	for _, col := range common {
		tDisplay := truth.Cell(truthRow, truthIdx[col])
		eDisplay := extracted.Cell(extrRow, extrIdx[col])

		tVal, eVal := tDisplay, eDisplay
		if idAliases[col] {
			// Identifier cells compare with internal whitespace removed,
			// so "RRI 002" matches "RRI002".
			tVal = model.NormalizeID(tVal)
			eVal = model.NormalizeID(eVal)
		}

		res.Total++
		if s.oracle.Equal(s.oracle.Normalize(tVal), s.oracle.Normalize(eVal)) {
			res.Correct++
		} else {
			res.Disagreements = append(res.Disagreements, model.Disagreement{
				Column:         col,
				TrueValue:      tDisplay,
				ExtractedValue: eDisplay,
			})
		}
	}

	res.Incorrect = res.Total - res.Correct
	if res.Total > 0 {
		res.Accuracy = float64(res.Correct) / float64(res.Total)
	}

	if res.Incorrect > 0 && len(res.Disagreements) == 0 {
		// Should not happen; log and continue rather than crash.
		zap.L().Warn("evaluate: incorrect cells without disagreement entries",
			zap.String("report_id", reportID),
			zap.Int("incorrect", res.Incorrect),
		)
	}

	zap.L().Info("evaluate: report scored",
		zap.String("report_id", reportID),
		zap.Int("total_cells", res.Total),
		zap.Int("correct_cells", res.Correct),
		zap.Int("incorrect_cells", res.Incorrect),
		zap.Float64("accuracy", res.Accuracy),
	)

	return res, nil
}

func columnIndex(cols []string) map[string]int {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		// First occurrence wins on duplicate headers.
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return idx
}
