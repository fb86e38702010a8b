// Package analyze provides corpus-level diagnostics over already-produced
// accuracy artifacts: which columns disagree most often, and which reports
// never made it through the pipeline.
package analyze

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/evaluate"
	"github.com/imagendo/radeval/internal/model"
)

// ColumnErrors is one column's disagreement count across the corpus.
type ColumnErrors struct {
	Column string
	Count  int
}

// ErrorDistribution parses every accuracy artifact in dir and counts how
// often each column appears in a differences table. The result is sorted
// by descending count, ties by column name.
func ErrorDistribution(dir string) ([]ColumnErrors, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "analyze: read accuracy dir %s", dir)
	}

	counts := make(map[string]int)
	parsed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), evaluate.ArtifactSuffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			zap.L().Warn("analyze: skipping unreadable artifact",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		cols, err := evaluate.ParseArtifactDiffColumns(f)
		f.Close()
		if err != nil {
			zap.L().Warn("analyze: skipping unparsable artifact",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		parsed++
		for _, c := range cols {
			counts[c]++
		}
	}

	if parsed == 0 {
		return nil, eris.Errorf("analyze: no accuracy artifacts in %s", dir)
	}

	dist := make([]ColumnErrors, 0, len(counts))
	for col, n := range counts {
		dist = append(dist, ColumnErrors{Column: col, Count: n})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Count != dist[j].Count {
			return dist[i].Count > dist[j].Count
		}
		return dist[i].Column < dist[j].Column
	})
	return dist, nil
}

// WriteDistribution renders the ranked per-column error counts.
func WriteDistribution(w io.Writer, dist []ColumnErrors) error {
	var b strings.Builder
	b.WriteString("--- Error Distribution by Column ---\n")
	width := len("Column")
	for _, d := range dist {
		if len(d.Column) > width {
			width = len(d.Column)
		}
	}
	fmt.Fprintf(&b, "%-*s  %s\n", width, "Column", "Errors")
	for _, d := range dist {
		fmt.Fprintf(&b, "%-*s  %d\n", width, d.Column, d.Count)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "analyze: write distribution")
	}
	return nil
}

// CoverageReport cross-references the three sources of report ids.
type CoverageReport struct {
	Expected    []string // from PDF filenames
	Completed   []string // from accuracy artifacts
	GroundTruth []string // from the ground-truth identifier column

	MissingResults []string // expected but no accuracy artifact
	MissingTruth   []string // expected but absent from ground truth
	Unexpected     []string // accuracy artifact without a source PDF
}

// Coverage scans the raw PDF directory and the accuracy directory and
// cross-references both against the ground-truth table, flagging reports
// that fell out anywhere along the pipeline.
func Coverage(pdfDir, accuracyDir string, truth *model.Table, idAliases []string, pdfPattern *regexp.Regexp) (*CoverageReport, error) {
	expected, err := idsFromPDFs(pdfDir, pdfPattern)
	if err != nil {
		return nil, err
	}

	completed, err := idsFromArtifacts(accuracyDir)
	if err != nil {
		return nil, err
	}

	idCol, _, ok := truth.IdentifierColumn(idAliases)
	if !ok {
		return nil, eris.Errorf("analyze: no report identifier column in ground truth (checked %v)", idAliases)
	}
	truthIDs := make(map[string]bool)
	for _, row := range truth.Rows {
		if idCol < len(row) {
			if id := model.NormalizeID(row[idCol]); id != "" {
				truthIDs[id] = true
			}
		}
	}

	rep := &CoverageReport{
		Expected:    sortedKeys(expected),
		Completed:   sortedKeys(completed),
		GroundTruth: sortedKeys(truthIDs),
	}
	for id := range expected {
		if !completed[id] {
			rep.MissingResults = append(rep.MissingResults, id)
		}
		if !truthIDs[id] {
			rep.MissingTruth = append(rep.MissingTruth, id)
		}
	}
	for id := range completed {
		if !expected[id] {
			rep.Unexpected = append(rep.Unexpected, id)
		}
	}
	sort.Strings(rep.MissingResults)
	sort.Strings(rep.MissingTruth)
	sort.Strings(rep.Unexpected)
	return rep, nil
}

func idsFromPDFs(dir string, pattern *regexp.Regexp) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "analyze: read pdf dir %s", dir)
	}
	ids := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if pattern.MatchString(e.Name()) {
			base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			ids[model.NormalizeID(base)] = true
		}
	}
	return ids, nil
}

func idsFromArtifacts(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "analyze: read accuracy dir %s", dir)
	}
	ids := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), evaluate.ArtifactSuffix) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), evaluate.ArtifactSuffix)
		ids[model.NormalizeID(id)] = true
	}
	return ids, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WriteCoverage renders the coverage cross-reference.
func WriteCoverage(w io.Writer, rep *CoverageReport) error {
	var b strings.Builder
	b.WriteString("--- Pipeline Coverage ---\n")
	fmt.Fprintf(&b, "Source PDFs          : %d\n", len(rep.Expected))
	fmt.Fprintf(&b, "Accuracy artifacts   : %d\n", len(rep.Completed))
	fmt.Fprintf(&b, "Ground truth entries : %d\n", len(rep.GroundTruth))

	writeIDList(&b, "Missing accuracy artifacts", rep.MissingResults)
	writeIDList(&b, "Missing from ground truth", rep.MissingTruth)
	writeIDList(&b, "Artifacts without source PDF", rep.Unexpected)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "analyze: write coverage")
	}
	return nil
}

func writeIDList(b *strings.Builder, title string, ids []string) {
	fmt.Fprintf(b, "\n%s (%d):\n", title, len(ids))
	if len(ids) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, id := range ids {
		fmt.Fprintf(b, "  %s\n", id)
	}
}
