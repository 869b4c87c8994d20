// Package logger holds the process zerolog root and its scoped children
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"surveysync/internal/platform/config/raw"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Logger is zerolog's logger under a project name
type Logger = zerolog.Logger

// Options shapes the root logger
type Options struct {
	Level      string // trace..panic, unknown means debug
	Format     string // console or json
	Service    string // stamped on every line when set
	WithCaller bool
	Writer     io.Writer // stdout when nil
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and LOG_CALLER
func FromEnv() Options {
	env := raw.New().Prefix("LOG_")
	return Options{
		Level:      env.Get("LEVEL", "debug"),
		Format:     env.Get("FORMAT", "console"),
		Service:    env.Get("SERVICE", ""),
		WithCaller: env.GetBool("CALLER", false),
	}
}

var (
	rootOnce sync.Once
	root     zerolog.Logger
)

// Init builds the root logger; only the first call has effect
func Init(opt Options) {
	rootOnce.Do(func() { root = build(opt) })
}

// Get returns the root, building it from the environment on first use
func Get() *Logger {
	Init(FromEnv())
	return &root
}

func build(opt Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	w := opt.Writer
	if w == nil {
		w = os.Stdout
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(opt.Level)
	if err != nil || opt.Level == "" {
		lvl = zerolog.DebugLevel
	}

	zc := zerolog.New(w).Level(lvl).With().Timestamp()
	if opt.Service != "" {
		zc = zc.Str("service", opt.Service)
	}
	if opt.WithCaller {
		zc = zc.Caller()
	}
	return zc.Logger()
}

type runKey struct{}

// WithRun tags ctx so C adds run_id to every line logged under it
func WithRun(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runKey{}, runID)
}

// C is the root enriched with the request id chi stored and any run id
func C(ctx context.Context) *Logger {
	zc := Get().With()
	if id := chimw.GetReqID(ctx); id != "" {
		zc = zc.Str("request_id", id)
	}
	if id, _ := ctx.Value(runKey{}).(string); id != "" {
		zc = zc.Str("run_id", id)
	}
	l := zc.Logger()
	return &l
}

// Named is the root tagged component=name
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}

// Replace installs l as the root and returns a func restoring the previous root
func Replace(l Logger) (restore func()) {
	Init(FromEnv())
	prev := root
	root = l
	return func() { root = prev }
}
