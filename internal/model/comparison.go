package model

// Disagreement is one cell where ground truth and extraction differ.
// Values are the display (pre-normalization) forms.
type Disagreement struct {
	Column         string
	TrueValue      string
	ExtractedValue string
}

// ComparisonResult holds the cell-level comparison outcome for one report.
// Provider and Model are opaque identifiers carried through to the artifact.
type ComparisonResult struct {
	ReportID string
	Provider string
	Model    string

	Columns   []string
	Total     int
	Correct   int
	Incorrect int
	Accuracy  float64

	Disagreements []Disagreement
}

// ReportScore is the (report id, accuracy) pair the aggregate reporter
// consumes.
type ReportScore struct {
	ReportID string
	Accuracy float64
}

// HistogramBins is the number of fixed-width accuracy buckets.
const HistogramBins = 10

// CorpusSummary aggregates per-report accuracies across a corpus.
type CorpusSummary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64 // population standard deviation

	Min         float64
	MinReportID string
	Max         float64
	MaxReportID string

	// Bins counts accuracies in [0.0,0.1) .. [0.9,1.0]; the final bin is
	// closed on both ends.
	Bins [HistogramBins]int
}
