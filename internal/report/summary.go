// Package report aggregates per-report accuracies into corpus-level
// statistics and renders the summary artifact.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/model"
)

// Summarize computes corpus statistics over per-report accuracies. The
// input is sorted by report id first, so min/max provenance and the
// rendered listing are deterministic regardless of collection order. An
// empty input is fatal: no statistics can be computed.
func Summarize(scores []model.ReportScore) (*model.CorpusSummary, error) {
	if len(scores) == 0 {
		return nil, eris.New("report: no accuracy data to summarize")
	}

	ordered := make([]model.ReportScore, len(scores))
	copy(ordered, scores)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ReportID < ordered[j].ReportID })

	sum := &model.CorpusSummary{
		Count:       len(ordered),
		Min:         ordered[0].Accuracy,
		MinReportID: ordered[0].ReportID,
		Max:         ordered[0].Accuracy,
		MaxReportID: ordered[0].ReportID,
	}

	var total float64
	for _, s := range ordered {
		total += s.Accuracy
		if s.Accuracy < sum.Min {
			sum.Min = s.Accuracy
			sum.MinReportID = s.ReportID
		}
		if s.Accuracy > sum.Max {
			sum.Max = s.Accuracy
			sum.MaxReportID = s.ReportID
		}
		sum.Bins[binIndex(s.Accuracy)]++
	}
	sum.Mean = total / float64(len(ordered))

	var sqDiff float64
	for _, s := range ordered {
		d := s.Accuracy - sum.Mean
		sqDiff += d * d
	}
	sum.StdDev = math.Sqrt(sqDiff / float64(len(ordered)))

	accs := make([]float64, len(ordered))
	for i, s := range ordered {
		accs[i] = s.Accuracy
	}
	sort.Float64s(accs)
	mid := len(accs) / 2
	if len(accs)%2 == 1 {
		sum.Median = accs[mid]
	} else {
		sum.Median = (accs[mid-1] + accs[mid]) / 2
	}

	for i, n := range sum.Bins {
		if n == 0 {
			zap.L().Debug("report: empty accuracy bin",
				zap.Float64("lower", float64(i)/model.HistogramBins),
			)
		}
	}

	return sum, nil
}

// binIndex buckets an accuracy into [0.0,0.1) .. [0.9,1.0]; the final bin
// is closed so a perfect score lands in it.
func binIndex(accuracy float64) int {
	idx := int(accuracy * model.HistogramBins)
	if idx < 0 {
		return 0
	}
	if idx >= model.HistogramBins {
		return model.HistogramBins - 1
	}
	return idx
}

// WriteSummary renders the corpus summary, the per-report listing sorted by
// id, and the histogram bin counts consumed by the plotting collaborator.
func WriteSummary(w io.Writer, sum *model.CorpusSummary, scores []model.ReportScore) error {
	ordered := make([]model.ReportScore, len(scores))
	copy(ordered, scores)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ReportID < ordered[j].ReportID })

	var b strings.Builder
	b.WriteString("--- Accuracy Summary ---\n")
	fmt.Fprintf(&b, "Processed Reports : %d\n", sum.Count)
	fmt.Fprintf(&b, "Average Accuracy  : %.4f\n", sum.Mean)
	fmt.Fprintf(&b, "Median Accuracy   : %.4f\n", sum.Median)
	fmt.Fprintf(&b, "Std Deviation     : %.4f\n", sum.StdDev)
	fmt.Fprintf(&b, "Minimum Accuracy  : %.4f (Report: %s)\n", sum.Min, sum.MinReportID)
	fmt.Fprintf(&b, "Maximum Accuracy  : %.4f (Report: %s)\n\n", sum.Max, sum.MaxReportID)

	b.WriteString("--- Individual Report Accuracies ---\n")
	for _, s := range ordered {
		fmt.Fprintf(&b, "%s: %.4f\n", s.ReportID, s.Accuracy)
	}

	b.WriteString("\n--- Accuracy Distribution ---\n")
	for i, n := range sum.Bins {
		lower := float64(i) / model.HistogramBins
		upper := float64(i+1) / model.HistogramBins
		bracket := ")"
		if i == model.HistogramBins-1 {
			bracket = "]"
		}
		fmt.Fprintf(&b, "[%.1f, %.1f%s: %d\n", lower, upper, bracket, n)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return eris.Wrap(err, "report: write summary")
	}
	return nil
}
