package repo

import (
	"context"
	"time"

	perr "surveysync/internal/platform/errors"
	"surveysync/internal/platform/store"
	ptime "surveysync/internal/platform/time"
	"surveysync/internal/services/surveysync/domain"

	"github.com/google/uuid"
)

// StartRun inserts a running sync_runs row (idempotent on id)
func (r *queries) StartRun(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sync_runs (id, started_at, status)
		VALUES ($1, $2, 'running')
		ON CONFLICT (id) DO UPDATE
		SET started_at = EXCLUDED.started_at, status = 'running', error = null, finished_at = null
	`, id, startedAt.UTC())
	return perr.FromPostgres(err, "start sync run")
}

// FinishRun records the outcome of a sync run; an unknown id is NotFound
func (r *queries) FinishRun(ctx context.Context, id uuid.UUID, fin domain.RunFinish) error {
	ws, we := ptime.Ptr(fin.Window.Start.UTC()), ptime.Ptr(fin.Window.End.UTC())
	err := store.ExecOne(ctx, r.q, `
		UPDATE sync_runs SET
			finished_at = now(),
			status = $2,
			fetched = $3,
			inserted = $4,
			updated = $5,
			failed = $6,
			pages = $7,
			truncated = $8,
			window_start = $9,
			window_end = $10,
			elapsed_ms = $11,
			error = NULLIF($12,'')
		WHERE id = $1
	`,
		id, string(fin.Status), fin.Fetched, fin.Inserted, fin.Updated, fin.Failed,
		fin.Pages, fin.Truncated, ws, we, fin.ElapsedMS, fin.ErrText,
	)
	return perr.FromPostgresf(err, "finish sync run %s", id)
}

// RecentRuns returns up to limit runs, newest first
func (r *queries) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	out, err := store.Many(ctx, r.q, scanRun, `
		SELECT id, started_at, finished_at, status,
			fetched, inserted, updated, failed, pages, truncated,
			window_start, window_end, elapsed_ms, error
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "recent sync runs")
	}
	return out, nil
}

func scanRun(row store.Row) (domain.RunRecord, error) {
	var (
		rec    domain.RunRecord
		status string
		ws, we *time.Time
	)
	if err := row.Scan(
		&rec.ID, &rec.StartedAt, &rec.FinishedAt, &status,
		&rec.Fetched, &rec.Inserted, &rec.Updated, &rec.Failed, &rec.Pages, &rec.Truncated,
		&ws, &we, &rec.ElapsedMS, &rec.Error,
	); err != nil {
		return domain.RunRecord{}, err
	}
	rec.Status = domain.RunStatus(status)
	rec.StartedAt = rec.StartedAt.UTC()
	if ws != nil && we != nil {
		rec.Window = &domain.Window{Start: ws.UTC(), End: we.UTC()}
	}
	return rec, nil
}
