package service

import (
	"math"
	"sync"
	"time"

	"surveysync/internal/services/surveysync/domain"
)

// StatsTracker holds process-lifetime run counters
type StatsTracker struct {
	mu sync.Mutex
	s  domain.RunStats
}

// RunStarted counts a run and stamps lastRun
func (t *StatsTracker) RunStarted(at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.TotalRuns++
	at = at.UTC()
	t.s.LastRun = &at
}

// RunSucceeded records a completed run
func (t *StatsTracker) RunSucceeded(at time.Time, processed, added int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.SurveysProcessed += int64(processed)
	t.s.NewSurveysAdded += int64(added)
	t.s.SuccessfulRuns++
	at = at.UTC()
	t.s.LastSuccess = &at
}

// RunFailed counts a run-level failure
func (t *StatsTracker) RunFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Errors++
}

// Snapshot returns a copy of the counters
func (t *StatsTracker) Snapshot() domain.RunStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.s
	if t.s.LastRun != nil {
		v := *t.s.LastRun
		out.LastRun = &v
	}
	if t.s.LastSuccess != nil {
		v := *t.s.LastSuccess
		out.LastSuccess = &v
	}
	return out
}

// Health derives the health verdict at now
func (t *StatsTracker) Health(now time.Time) domain.HealthSnapshot {
	s := t.Snapshot()
	h := domain.HealthSnapshot{Stats: s}
	if s.LastSuccess == nil {
		return h
	}
	since := now.Sub(*s.LastSuccess)
	mins := int64(math.Round(since.Minutes()))
	h.TimeSinceLastSuccess = &mins
	h.IsHealthy = s.SuccessfulRuns > 0 && since < domain.HealthWindow
	return h
}
