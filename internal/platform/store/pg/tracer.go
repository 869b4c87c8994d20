package pg

import (
	"context"
	"strings"
	"time"

	"surveysync/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
type QueryEvent struct {
	SQL     string
	Args    []any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every statement through root as component=pg
// it pins debug level so LOG_SQL output survives a quieter root level
func Tracer(root logger.Logger) QueryTracer {
	return logTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type logTracer struct{ log logger.Logger }

func (t logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	e := t.log.Info()
	if ev.Slow || ev.Err != nil {
		e = t.log.Warn()
	}
	e.Dur("elapsed", ev.Elapsed).
		Bool("slow", ev.Slow).
		Str("sql", oneLine(ev.SQL)).
		Int("args", len(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// oneLine folds the whitespace of a multi line statement into single spaces
func oneLine(sql string) string { return strings.Join(strings.Fields(sql), " ") }
