package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/imagendo/radeval/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS eval_runs (
	id         TEXT PRIMARY KEY,
	dataset    TEXT NOT NULL,
	provider   TEXT NOT NULL,
	model      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS report_scores (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL REFERENCES eval_runs(id),
	report_id     TEXT NOT NULL,
	total         INTEGER NOT NULL,
	correct       INTEGER NOT NULL,
	incorrect     INTEGER NOT NULL,
	accuracy      REAL NOT NULL,
	columns       TEXT NOT NULL,
	disagreements TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (run_id, report_id)
);

CREATE INDEX IF NOT EXISTS idx_eval_runs_dataset ON eval_runs(dataset);
CREATE INDEX IF NOT EXISTS idx_eval_runs_provider ON eval_runs(provider, model);
CREATE INDEX IF NOT EXISTS idx_report_scores_run_id ON report_scores(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, dataset, provider, modelName string) (*EvalRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO eval_runs (id, dataset, provider, model, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, dataset, provider, modelName, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &EvalRun{
		ID:        id,
		Dataset:   dataset,
		Provider:  provider,
		Model:     modelName,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]EvalRun, error) {
	query := `SELECT id, dataset, provider, model, created_at FROM eval_runs WHERE 1=1`
	var args []any

	if filter.Dataset != "" {
		query += ` AND dataset = ?`
		args = append(args, filter.Dataset)
	}
	if filter.Provider != "" {
		query += ` AND provider = ?`
		args = append(args, filter.Provider)
	}
	if filter.Model != "" {
		query += ` AND model = ?`
		args = append(args, filter.Model)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []EvalRun
	for rows.Next() {
		var r EvalRun
		if err := rows.Scan(&r.ID, &r.Dataset, &r.Provider, &r.Model, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveScore(ctx context.Context, runID string, result *model.ComparisonResult) error {
	columnsJSON, err := json.Marshal(result.Columns)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal columns")
	}
	disagreementsJSON, err := json.Marshal(result.Disagreements)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal disagreements")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_scores (id, run_id, report_id, total, correct, incorrect, accuracy, columns, disagreements, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, report_id) DO UPDATE SET
			total = excluded.total,
			correct = excluded.correct,
			incorrect = excluded.incorrect,
			accuracy = excluded.accuracy,
			columns = excluded.columns,
			disagreements = excluded.disagreements`,
		uuid.New().String(), runID, result.ReportID,
		result.Total, result.Correct, result.Incorrect, result.Accuracy,
		string(columnsJSON), string(disagreementsJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save score %s", result.ReportID)
}

func (s *SQLiteStore) ListScores(ctx context.Context, runID string) ([]model.ComparisonResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rs.report_id, er.provider, er.model, rs.total, rs.correct, rs.incorrect, rs.accuracy, rs.columns, rs.disagreements
		 FROM report_scores rs JOIN eval_runs er ON er.id = rs.run_id
		 WHERE rs.run_id = ?
		 ORDER BY rs.report_id`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list scores for run %s", runID)
	}
	defer rows.Close()

	var results []model.ComparisonResult
	for rows.Next() {
		var r model.ComparisonResult
		var columnsJSON, disagreementsJSON string
		if err := rows.Scan(&r.ReportID, &r.Provider, &r.Model, &r.Total, &r.Correct, &r.Incorrect, &r.Accuracy, &columnsJSON, &disagreementsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan score")
		}
		if err := json.Unmarshal([]byte(columnsJSON), &r.Columns); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal columns")
		}
		if err := json.Unmarshal([]byte(disagreementsJSON), &r.Disagreements); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal disagreements")
		}
		results = append(results, r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: list scores iterate")
}
