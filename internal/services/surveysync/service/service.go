// Package service provides the survey sync engine
package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"surveysync/internal/modkit/repokit"
	perr "surveysync/internal/platform/errors"
	"surveysync/internal/platform/logger"
	"surveysync/internal/platform/telemetry"
	"surveysync/internal/services/surveysync/domain"
	"surveysync/internal/services/surveysync/guardrails"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"
)

// Config holds configuration options for the sync service
type Config struct {
	// Upstream query shape
	CompanyIDs []string
	PageSize   int // <=0 -> 200
	MaxPages   int // <=0 -> 10

	// Per-phase deadlines
	Timeouts guardrails.Timeouts

	// HistoryLimit is the default number of runs SyncHistory returns; <=0 -> 20
	HistoryLimit int
}

// Service sequences one sync run and serves status reads
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.StorageRepo]
	Cfg    Config

	Sessions *SessionManager
	Planner  *WindowPlanner
	Fetcher  *RecordFetcher
	Writer   UpsertWriter
	Stats    *StatsTracker

	// Lease wraps each run in an optional cross-process lock
	Lease guardrails.Lease

	now     func() time.Time
	newID   func() uuid.UUID
	started time.Time

	inflight *semaphore.Weighted
	running  atomic.Bool
	metrics  runMetrics
	tracer   trace.Tracer
}

// New constructs the sync service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
	auth domain.Authenticator,
	src domain.SurveySource,
	cfg Config,
) *Service {
	if db == nil {
		panic("surveysync.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("surveysync.Service requires a non nil Repo binder")
	}
	if src == nil {
		panic("surveysync.Service requires a non nil SurveySource")
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 20
	}

	s := &Service{
		DB:       db,
		Binder:   binder,
		Cfg:      cfg,
		Stats:    &StatsTracker{},
		Lease:    guardrails.NoLease,
		now:      time.Now,
		newID:    uuid.New,
		inflight: semaphore.NewWeighted(1),
		metrics:  newRunMetrics(telemetry.Meter(instrumentationName), logger.Named("surveysync")),
		tracer:   telemetry.Tracer(instrumentationName),
	}
	clock := func() time.Time { return s.now() }

	s.Sessions = NewSessionManager(auth, cfg.Timeouts, domain.RefreshMargin, clock)
	s.Planner = &WindowPlanner{
		DB:       db,
		Binder:   binder,
		Timeouts: cfg.Timeouts,
		Overlap:  domain.WindowOverlap,
		Default:  domain.DefaultWatermark,
		Now:      clock,
	}
	s.Fetcher = &RecordFetcher{
		Source:     src,
		Sessions:   s.Sessions,
		Timeouts:   cfg.Timeouts,
		CompanyIDs: cfg.CompanyIDs,
		PageSize:   cfg.PageSize,
		MaxPages:   cfg.MaxPages,
	}
	s.Writer = UpsertWriter{Now: clock}
	s.started = s.now()
	return s
}

// WithClock swaps the time source (tests)
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
		s.started = now()
	}
	return s
}

// WithLease wires a cross-process run lease
func (s *Service) WithLease(l guardrails.Lease) *Service {
	if l != nil {
		s.Lease = l
	}
	return s
}

// RunSync performs one sync run; a trigger while another run is in flight
// gets domain.ErrSyncBusy and is not counted as a run
func (s *Service) RunSync(ctx context.Context) (domain.RunResult, error) {
	if !s.inflight.TryAcquire(1) {
		s.metrics.reject(ctx)
		return domain.RunResult{}, domain.ErrSyncBusy
	}
	s.running.Store(true)
	defer func() {
		s.running.Store(false)
		s.inflight.Release(1)
	}()

	var (
		res    domain.RunResult
		runErr error
		ran    bool
	)
	err := s.Lease(ctx, func(lctx context.Context) error {
		ran = true
		res, runErr = s.run(lctx)
		return runErr
	})
	switch {
	case errors.Is(err, guardrails.ErrLeaseHeld):
		s.metrics.reject(ctx)
		return domain.RunResult{}, domain.ErrSyncBusy
	case !ran && err != nil:
		return domain.RunResult{}, perr.Wrap(err, perr.ErrorCodeDB, "acquire sync lease")
	case !ran:
		return domain.RunResult{}, domain.ErrSyncBusy
	case runErr != nil:
		return domain.RunResult{}, runErr
	case err != nil:
		// the run finished; only releasing the lease failed
		logger.C(ctx).Warn().Err(err).Msg("surveysync: lease release failed")
	}
	return res, nil
}

func (s *Service) run(ctx context.Context) (domain.RunResult, error) {
	start := s.now()
	runID := s.newID()
	s.Stats.RunStarted(start)
	ctx = logger.WithRun(ctx, runID.String())

	ctx, span := s.tracer.Start(ctx, "surveysync.run",
		trace.WithAttributes(attribute.String("run_id", runID.String())))
	defer span.End()

	log := logger.C(ctx)
	log.Info().Int64("run", s.Stats.Snapshot().TotalRuns).Msg("surveysync: run starting")

	s.recordStart(ctx, runID, start)

	rctx, cancel := guardrails.WithRun(ctx, s.Cfg.Timeouts)
	defer cancel()

	fin := domain.RunFinish{}
	fail := func(err error) (domain.RunResult, error) {
		s.Stats.RunFailed()
		elapsed := s.now().Sub(start)
		fin.Status = domain.RunError
		fin.ElapsedMS = int(elapsed.Milliseconds())
		fin.ErrText = err.Error()
		s.recordFinish(ctx, runID, fin)
		s.metrics.run(ctx, domain.RunError, elapsed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("surveysync: run failed")
		return domain.RunResult{}, err
	}

	w := s.Planner.ComputeWindow(rctx)
	fin.Window = w
	log.Info().Time("from", w.Start).Time("to", w.End).Msg("surveysync: fetching window")

	if _, err := s.Sessions.EnsureSession(rctx); err != nil {
		return fail(err)
	}

	fr, err := s.Fetcher.FetchWindow(rctx, w)
	if err != nil {
		return fail(err)
	}
	fin.Fetched, fin.Pages, fin.Truncated = len(fr.Records), fr.Pages, fr.Truncated
	log.Info().Int("fetched", len(fr.Records)).Int("pages", fr.Pages).Msg("surveysync: fetched surveys")

	for _, rec := range fr.Records {
		if rctx.Err() != nil {
			return fail(perr.Wrap(rctx.Err(), perr.ErrorCodeUnavailable, "sync run budget exceeded"))
		}
		if rec.DecodeErr != nil {
			fin.Failed++
			log.Error().Err(rec.DecodeErr).Str("survey", rec.ExternalID).Msg("surveysync: unreadable survey skipped")
			continue
		}
		outcome, err := s.writeOne(rctx, rec)
		if err != nil {
			fin.Failed++
			log.Error().Err(err).Str("survey", rec.ExternalID).Msg("surveysync: error processing survey")
			continue
		}
		switch outcome {
		case domain.OutcomeInserted:
			fin.Inserted++
		case domain.OutcomeUpdated:
			fin.Updated++
		}
	}

	done := s.now()
	elapsed := done.Sub(start)
	s.Stats.RunSucceeded(done, len(fr.Records), fin.Inserted)

	fin.Status = domain.RunOK
	fin.ElapsedMS = int(elapsed.Milliseconds())
	s.recordFinish(ctx, runID, fin)

	s.metrics.run(ctx, domain.RunOK, elapsed)
	s.metrics.record(ctx, domain.OutcomeInserted.String(), fin.Inserted)
	s.metrics.record(ctx, domain.OutcomeUpdated.String(), fin.Updated)
	s.metrics.record(ctx, "failed", fin.Failed)

	res := domain.RunResult{
		RunID:          runID,
		TotalFetched:   len(fr.Records),
		NewSurveys:     fin.Inserted,
		SkippedSurveys: fin.Updated,
		FailedSurveys:  fin.Failed,
		Pages:          fr.Pages,
		Truncated:      fr.Truncated,
		Window:         w,
		Timestamp:      done.UTC(),
	}
	log.Info().
		Int("total_fetched", res.TotalFetched).
		Int("new", res.NewSurveys).
		Int("skipped", res.SkippedSurveys).
		Int("failed", res.FailedSurveys).
		Bool("truncated", res.Truncated).
		Dur("elapsed", elapsed).
		Msg("surveysync: run completed")
	return res, nil
}

// writeOne upserts a single record in its own transaction
func (s *Service) writeOne(ctx context.Context, rec domain.SurveyRecord) (domain.UpsertOutcome, error) {
	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()

	var out domain.UpsertOutcome
	err := repokit.WithTx(dctx, s.DB, func(q repokit.Queryer) error {
		o, err := s.Writer.Upsert(dctx, repokit.MustBind(s.Binder, q), rec)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

// recordStart and recordFinish are best effort; history never fails a run
func (s *Service) recordStart(ctx context.Context, id uuid.UUID, at time.Time) {
	dctx, cancel := guardrails.ForDB(context.WithoutCancel(ctx), s.Cfg.Timeouts)
	defer cancel()
	if err := s.Binder.Bind(s.DB).StartRun(dctx, id, at); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("surveysync: record run start failed")
	}
}

func (s *Service) recordFinish(ctx context.Context, id uuid.UUID, fin domain.RunFinish) {
	dctx, cancel := guardrails.ForDB(context.WithoutCancel(ctx), s.Cfg.Timeouts)
	defer cancel()
	if err := s.Binder.Bind(s.DB).FinishRun(dctx, id, fin); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("surveysync: record run finish failed")
	}
}
