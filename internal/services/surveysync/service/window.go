package service

import (
	"context"
	"time"

	"surveysync/internal/modkit/repokit"
	"surveysync/internal/platform/logger"
	"surveysync/internal/services/surveysync/domain"
	"surveysync/internal/services/surveysync/guardrails"
)

// WindowPlanner derives the next fetch window from the newest persisted survey
type WindowPlanner struct {
	DB       repokit.TxRunner
	Binder   repokit.Binder[domain.StorageRepo]
	Timeouts guardrails.Timeouts
	Overlap  time.Duration
	Default  time.Time
	Now      func() time.Time
}

// Watermark returns the newest persisted created_at, or Default when the store
// is empty or unreadable
func (p *WindowPlanner) Watermark(ctx context.Context) time.Time {
	dctx, cancel := guardrails.ForDB(ctx, p.Timeouts)
	defer cancel()

	latest, ok, err := p.Binder.Bind(p.DB).LatestCreatedAt(dctx)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Time("default", p.Default).
			Msg("surveysync: could not read latest survey date, using default")
		return p.Default
	}
	if !ok {
		return p.Default
	}
	return latest
}

// ComputeWindow returns [watermark - overlap, now], clamped so Start <= End
func (p *WindowPlanner) ComputeWindow(ctx context.Context) domain.Window {
	return planWindow(p.Watermark(ctx), p.Overlap, p.Now().UTC())
}

func planWindow(watermark time.Time, overlap time.Duration, now time.Time) domain.Window {
	start := watermark.Add(-overlap).UTC()
	if start.After(now) {
		start = now
	}
	return domain.Window{Start: start, End: now}
}
