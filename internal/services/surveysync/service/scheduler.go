package service

import (
	"context"
	"time"

	"surveysync/internal/platform/logger"
	"surveysync/internal/services/surveysync/domain"
)

// Runner is the slice of the service the scheduler triggers
type Runner interface {
	RunSync(ctx context.Context) (domain.RunResult, error)
}

// Scheduler triggers a run after InitialDelay and then every Interval
// failures and busy rejections are logged and swallowed
type Scheduler struct {
	Runner       Runner
	Interval     time.Duration
	InitialDelay time.Duration
}

// Run blocks until ctx is canceled
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	log := logger.C(ctx)
	log.Info().Dur("interval", interval).Dur("initial_delay", s.InitialDelay).Msg("surveysync: scheduler started")

	t := time.NewTimer(s.InitialDelay)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("surveysync: scheduler stopped")
			return nil
		case <-t.C:
			s.tick(ctx)
			t.Reset(interval)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	log := logger.C(ctx)
	res, err := s.Runner.RunSync(ctx)
	switch {
	case domain.IsBusy(err):
		log.Info().Msg("surveysync: scheduled run skipped, another run is in flight")
	case err != nil:
		log.Error().Err(err).Msg("surveysync: scheduled run failed")
	default:
		log.Info().Int("new", res.NewSurveys).Int("fetched", res.TotalFetched).Msg("surveysync: scheduled run completed")
	}
}
