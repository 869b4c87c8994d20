package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"surveysync/internal/services/surveysync/domain"
)

// brokenMeter fails every counter it is asked for
type brokenMeter struct{ noop.Meter }

func (brokenMeter) Int64Counter(string, ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	return nil, errors.New("duplicate instrument")
}

func TestRunMetrics_LogsInstrumentErrorsOnce(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	m := newRunMetrics(brokenMeter{}, &log)

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "metric instruments unavailable"), out)
	assert.Contains(t, out, "duplicate instrument")

	// missing instruments are skipped rather than dereferenced
	assert.NotPanics(t, func() {
		ctx := context.Background()
		m.run(ctx, domain.RunOK, time.Second)
		m.record(ctx, "inserted", 3)
		m.reject(ctx)
	})
}

func TestRunMetrics_QuietWhenInstrumentsBuild(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	newRunMetrics(noop.NewMeterProvider().Meter("test"), &log)
	assert.Empty(t, buf.String())
}
