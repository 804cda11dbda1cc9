package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var trialColumns = []string{
	"id", "created_at", "run_id", "track", "label", "subject", "trial",
	"version", "questions", "answered", "chunks", "failed_chunks",
	"written", "error_message", "path",
}

// SQLTrialRepo implements TrialRepo on the ledger database.
type SQLTrialRepo struct {
	db *sql.DB
}

var _ TrialRepo = (*SQLTrialRepo)(nil)

func (r *SQLTrialRepo) RecordTrial(ctx context.Context, rec TrialRecord) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args := builder().Insert(tableTrials).
		Columns(trialColumns[1:]...).
		Values(
			ts.UnixMilli(),
			rec.RunID,
			rec.Track,
			rec.Label,
			rec.Subject,
			rec.Trial,
			rec.Version,
			rec.Questions,
			rec.Answered,
			rec.Chunks,
			rec.FailedChunks,
			rec.Written,
			rec.ErrorMessage,
			rec.Path,
		).Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save trial record: %w", err)
	}
	return nil
}

// ListTrials returns the trials of a run in insertion order. An empty
// runID lists the most recent trials across runs, newest first.
func (r *SQLTrialRepo) ListTrials(ctx context.Context, runID string, limit int) ([]TrialRecord, error) {
	sel := builder().Select(trialColumns...).From(entsql.Table(tableTrials))
	if runID != "" {
		sel.Where(entsql.EQ("run_id", runID)).OrderBy("id")
	} else {
		sel.OrderBy(entsql.Desc("id"))
	}
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trials: %w", err)
	}
	defer rows.Close()

	var out []TrialRecord
	for rows.Next() {
		var rec TrialRecord
		var createdAt int64
		err := rows.Scan(
			&rec.ID, &createdAt, &rec.RunID, &rec.Track, &rec.Label, &rec.Subject,
			&rec.Trial, &rec.Version, &rec.Questions, &rec.Answered, &rec.Chunks,
			&rec.FailedChunks, &rec.Written, &rec.ErrorMessage, &rec.Path,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		rec.Timestamp = time.UnixMilli(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RunSummaries aggregates trials per run, most recent run first.
func (r *SQLTrialRepo) RunSummaries(ctx context.Context, limit int) ([]RunSummary, error) {
	sel := builder().Select(
		"run_id",
		entsql.As(entsql.Max("version"), "version"),
		entsql.As(entsql.Min("created_at"), "started"),
		entsql.As(entsql.Count("*"), "trials"),
		"SUM(CASE WHEN failed_chunks > 0 THEN 1 ELSE 0 END) AS degraded",
		"SUM(CASE WHEN error_message != '' THEN 1 ELSE 0 END) AS failed",
		entsql.As(entsql.Max("questions"), "questions"),
	).
		From(entsql.Table(tableTrials)).
		GroupBy("run_id").
		OrderBy(entsql.Desc("started"))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var started int64
		if err := rows.Scan(&s.RunID, &s.Version, &started, &s.Trials, &s.Degraded, &s.Failed, &s.Questions); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Started = time.UnixMilli(started)
		out = append(out, s)
	}
	return out, rows.Err()
}
