package service

import (
	"context"

	perr "surveysync/internal/platform/errors"
	"surveysync/internal/platform/logger"
	"surveysync/internal/services/surveysync/domain"
	"surveysync/internal/services/surveysync/guardrails"
)

const maxHistoryLimit = 100

// HealthStatus derives the health verdict from the live counters
func (s *Service) HealthStatus(_ context.Context) domain.HealthSnapshot {
	return s.Stats.Health(s.now())
}

// DetailedStatus adds uptime, store counts and session state, all read at call time
func (s *Service) DetailedStatus(ctx context.Context) (domain.StatusSnapshot, error) {
	now := s.now()
	out := domain.StatusSnapshot{
		Service:        domain.ServiceName,
		Version:        domain.ServiceVersion,
		Uptime:         now.Sub(s.started).Seconds(),
		HealthSnapshot: s.Stats.Health(now),
		Ovation:        s.Sessions.Status(),
	}

	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	repo := s.Binder.Bind(s.DB)

	n, err := repo.CountSurveys(dctx)
	if err != nil {
		return domain.StatusSnapshot{}, perr.WithOp(err, "surveysync.status")
	}
	out.Database.TotalSurveys = n

	latest, ok, err := repo.LatestCreatedAt(dctx)
	if err != nil {
		return domain.StatusSnapshot{}, perr.WithOp(err, "surveysync.status")
	}
	if ok {
		out.Database.LatestSurveyDate = &latest
	}
	return out, nil
}

// SyncHistory returns recent recorded runs and the live counters
// when history cannot be read it falls back to the last run known to this process
func (s *Service) SyncHistory(ctx context.Context, limit int) (domain.HistorySnapshot, error) {
	if limit <= 0 {
		limit = s.Cfg.HistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	stats := s.Stats.Snapshot()
	out := domain.HistorySnapshot{Summary: stats, RecentRuns: []domain.RunRecord{}}

	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()

	runs, err := s.Binder.Bind(s.DB).RecentRuns(dctx, limit)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("surveysync: read run history failed, using process stats")
		if r, ok := lastRunFromStats(stats, s.running.Load()); ok {
			out.RecentRuns = append(out.RecentRuns, r)
		}
		return out, nil
	}
	if len(runs) > 0 {
		out.RecentRuns = runs
	}
	return out, nil
}

// lastRunFromStats rebuilds the newest run; running marks a run still in flight
func lastRunFromStats(st domain.RunStats, running bool) (domain.RunRecord, bool) {
	if st.LastRun == nil {
		return domain.RunRecord{}, false
	}
	r := domain.RunRecord{StartedAt: *st.LastRun, Status: domain.RunError}
	if running {
		r.Status = domain.RunRunning
		return r, true
	}
	if st.LastSuccess != nil && !st.LastSuccess.Before(*st.LastRun) {
		r.Status = domain.RunOK
		fin := *st.LastSuccess
		r.FinishedAt = &fin
	}
	r.Inserted = int(st.NewSurveysAdded)
	return r, true
}
