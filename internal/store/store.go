// Package store persists evaluation runs and per-report scores so that
// summaries can be recomputed and runs compared without re-reading the
// accuracy artifacts.
package store

import (
	"context"
	"time"

	"github.com/imagendo/radeval/internal/model"
)

// EvalRun is one recorded evaluation of a dataset by a provider/model pair.
type EvalRun struct {
	ID        string    `json:"id"`
	Dataset   string    `json:"dataset"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}

// RunFilter specifies criteria for listing evaluation runs.
type RunFilter struct {
	Dataset  string `json:"dataset,omitempty"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Store defines the persistence interface for evaluation results.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, dataset, provider, modelName string) (*EvalRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]EvalRun, error)

	// Scores
	SaveScore(ctx context.Context, runID string, result *model.ComparisonResult) error
	ListScores(ctx context.Context, runID string) ([]model.ComparisonResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
