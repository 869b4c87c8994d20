package service

import (
	"context"
	"errors"
	"time"

	"surveysync/internal/platform/logger"
	"surveysync/internal/services/surveysync/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "surveysync/sync"

// runMetrics are the exported sync instruments; instrument errors leave nil fields
type runMetrics struct {
	runs     metric.Int64Counter
	records  metric.Int64Counter
	duration metric.Float64Histogram
	rejected metric.Int64Counter
}

func newRunMetrics(m metric.Meter, log *logger.Logger) runMetrics {
	var (
		rm   runMetrics
		errs [4]error
	)
	rm.runs, errs[0] = m.Int64Counter("surveysync.runs",
		metric.WithDescription("sync runs by outcome"))
	rm.records, errs[1] = m.Int64Counter("surveysync.records",
		metric.WithDescription("fetched surveys by write outcome"))
	rm.duration, errs[2] = m.Float64Histogram("surveysync.run.duration",
		metric.WithDescription("sync run wall time"), metric.WithUnit("s"))
	rm.rejected, errs[3] = m.Int64Counter("surveysync.runs.rejected",
		metric.WithDescription("triggers rejected while a run was in flight"))
	if err := errors.Join(errs[:]...); err != nil {
		log.Warn().Err(err).Msg("surveysync: metric instruments unavailable")
	}
	return rm
}

func (m runMetrics) run(ctx context.Context, status domain.RunStatus, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", string(status)))
	if m.runs != nil {
		m.runs.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

func (m runMetrics) record(ctx context.Context, outcome string, n int) {
	if m.records == nil || n == 0 {
		return
	}
	m.records.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m runMetrics) reject(ctx context.Context) {
	if m.rejected != nil {
		m.rejected.Add(ctx, 1)
	}
}
