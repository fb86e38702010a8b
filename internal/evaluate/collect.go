package evaluate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/imagendo/radeval/internal/model"
)

// CollectScores reads every accuracy artifact in dir and returns the
// (report id, accuracy) pairs sorted by report id. An unreadable or
// unparsable artifact is skipped with a warning; it never aborts the
// aggregate. A missing or empty directory is fatal for the corpus.
func CollectScores(dir string) ([]model.ReportScore, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: read accuracy dir %s", dir)
	}

	var scores []model.ReportScore
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ArtifactSuffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		f, err := os.Open(path)
		if err != nil {
			zap.L().Warn("evaluate: skipping unreadable artifact",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		reportID, accuracy, err := ParseArtifact(f)
		f.Close()
		if err != nil {
			zap.L().Warn("evaluate: skipping unparsable artifact",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		scores = append(scores, model.ReportScore{ReportID: reportID, Accuracy: accuracy})
	}

	if len(scores) == 0 {
		return nil, eris.Errorf("evaluate: no valid accuracy artifacts in %s", dir)
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].ReportID < scores[j].ReportID })
	return scores, nil
}
