package evaluate

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/imagendo/radeval/internal/model"
)

// ArtifactSuffix is the filename suffix for per-report accuracy artifacts.
const ArtifactSuffix = "_accuracy.txt"

// ArtifactFileName returns the artifact filename for a report's display id.
func ArtifactFileName(displayID string) string {
	return displayID + ArtifactSuffix
}

// diffHeader separates the summary block from the disagreement table.
const diffHeader = "--- Differences ---"

// WriteArtifact renders the per-report accuracy artifact: a header block
// with counts and the 4-decimal accuracy, followed by an aligned table of
// every disagreeing column when any cells differ.
func WriteArtifact(w io.Writer, res *model.ComparisonResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Report ID: %s\n", res.ReportID)
	if res.Provider != "" {
		fmt.Fprintf(&b, "Provider: %s\n", res.Provider)
	}
	if res.Model != "" {
		fmt.Fprintf(&b, "Model: %s\n", res.Model)
	}
	fmt.Fprintf(&b, "Compared Columns (%d):\n", len(res.Columns))
	fmt.Fprintf(&b, "%s\n\n", strings.Join(res.Columns, ", "))
	fmt.Fprintf(&b, "Total comparable cells: %d\n", res.Total)
	fmt.Fprintf(&b, "Correct cells: %d\n", res.Correct)
	fmt.Fprintf(&b, "Incorrect cells: %d\n", res.Incorrect)
	fmt.Fprintf(&b, "Overall accuracy: %.4f\n", res.Accuracy)

	if len(res.Disagreements) > 0 {
		b.WriteString("\n" + diffHeader + "\n")
		writeDiffTable(&b, res.Disagreements)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "evaluate: write artifact")
	}
	return nil
}

// writeDiffTable renders disagreements as fixed-width aligned columns.
// Empty display values print as <NA> so the table stays parseable.
func writeDiffTable(b *strings.Builder, diffs []model.Disagreement) {
	const (
		colHeader  = "Column"
		trueHeader = "True Value"
		extrHeader = "Extracted Value"
	)

	colW, trueW := len(colHeader), len(trueHeader)
	for _, d := range diffs {
		colW = max(colW, len(d.Column))
		trueW = max(trueW, len(displayValue(d.TrueValue)))
	}

	fmt.Fprintf(b, "%-*s  %-*s  %s\n", colW, colHeader, trueW, trueHeader, extrHeader)
	for _, d := range diffs {
		fmt.Fprintf(b, "%-*s  %-*s  %s\n",
			colW, d.Column,
			trueW, displayValue(d.TrueValue),
			displayValue(d.ExtractedValue),
		)
	}
}

func displayValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return "<NA>"
	}
	return v
}

// ParseArtifact recovers the report id and accuracy from an artifact. An
// artifact missing either line is unparsable and fatal for that report.
func ParseArtifact(r io.Reader) (string, float64, error) {
	var (
		reportID    string
		accuracy    float64
		hasAccuracy bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Report ID:"):
			reportID = strings.TrimSpace(strings.TrimPrefix(line, "Report ID:"))
		case strings.HasPrefix(line, "Overall accuracy:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "Overall accuracy:"))
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return "", 0, eris.Wrapf(err, "evaluate: parse accuracy %q", raw)
			}
			accuracy = v
			hasAccuracy = true
		case line == diffHeader:
			// Everything below is the disagreement table.
			return finishParse(reportID, accuracy, hasAccuracy)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", 0, eris.Wrap(err, "evaluate: read artifact")
	}
	return finishParse(reportID, accuracy, hasAccuracy)
}

func finishParse(reportID string, accuracy float64, hasAccuracy bool) (string, float64, error) {
	if reportID == "" {
		return "", 0, eris.New("evaluate: artifact has no Report ID line")
	}
	if !hasAccuracy {
		return "", 0, eris.Errorf("evaluate: artifact for %s has no Overall accuracy line", reportID)
	}
	return reportID, accuracy, nil
}

// ParseArtifactDiffColumns returns the column names listed in an artifact's
// differences table, for corpus-level error-distribution analysis.
func ParseArtifactDiffColumns(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)

	inDiff := false
	trueValueStart := -1
	var cols []string

	for scanner.Scan() {
		line := scanner.Text()
		if !inDiff {
			if line == diffHeader {
				inDiff = true
			}
			continue
		}
		if trueValueStart < 0 {
			idx := strings.Index(line, "True Value")
			if idx < 0 {
				return nil, eris.New("evaluate: differences table has no header row")
			}
			trueValueStart = idx
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		end := min(trueValueStart, len(line))
		col := strings.TrimSpace(line[:end])
		if col != "" {
			cols = append(cols, col)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrap(err, "evaluate: read artifact")
	}
	return cols, nil
}
