package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"surveysync/internal/modkit"
	"surveysync/internal/modkit/httpkit"
	"surveysync/internal/modkit/module"
	"surveysync/internal/platform/config"
	"surveysync/internal/platform/logger"
	phttp "surveysync/internal/platform/net/http"
	"surveysync/internal/platform/store"
	"surveysync/internal/platform/telemetry"
	"surveysync/internal/platform/version"
	"surveysync/migrations"

	"surveysync/internal/services/api"
	syncdomain "surveysync/internal/services/surveysync/domain"
	syncmod "surveysync/internal/services/surveysync/module"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	fMode := flag.String("mode", "serve", "serve: http + scheduler | once: single sync run then exit")
	flag.Parse()

	os.Exit(run(*fMode))
}

func run(mode string) int {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bi := version.Info()
	otelDown, err := telemetry.Init(ctx, telemetry.FromConfig(root, bi.Service, bi.Version))
	if err != nil {
		l.Error().Err(err).Msg("telemetry init failed")
		return 1
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelDown(sctx); err != nil {
			l.Error().Err(err).Msg("telemetry shutdown failed")
		}
	}()

	st, err := store.Open(ctx, store.Config{
		AppName: bi.Service,
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := st.Guard(ctx); err != nil {
		l.Error().Err(err).Msg("store guard failed")
		return 1
	}

	if pgCfg.MayBool("MIGRATE", false) {
		n, err := store.Migrate(ctx, st.PG, migrations.FS, *l)
		if err != nil {
			l.Error().Err(err).Msg("migrations failed")
			return 1
		}
		l.Info().Int("applied", n).Msg("migrations done")
	}

	deps := modkit.Deps{Cfg: root, PG: st.PG, Log: *l}
	syncMod, err := syncmod.New(deps, syncmod.FromConfig(root))
	if err != nil {
		l.Error().Err(err).Msg("survey sync module")
		return 1
	}

	switch mode {
	case "once":
		res, err := module.MustPortsOf[syncdomain.ServicePort](syncMod).RunSync(ctx)
		if err != nil {
			l.Error().Err(err).Msg("sync run failed")
			return 1
		}
		l.Info().
			Int("fetched", res.TotalFetched).
			Int("new", res.NewSurveys).
			Int("skipped", res.SkippedSurveys).
			Int("failed", res.FailedSurveys).
			Bool("truncated", res.Truncated).
			Msg("sync run done")
		return 0
	case "serve":
	default:
		l.Error().Str("mode", mode).Msg("unknown -mode, want serve or once")
		return 2
	}

	// http server (reads CORE_API_API_PORT)
	srv := phttp.NewServer(apiCfg)
	api.Mount(srv.Router(), api.Options{
		Config:         apiCfg,
		Store:          st,
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		Stack: httpkit.StackOptions{
			// a manual /sync may run as long as the run budget
			RequestTimeout: apiCfg.MayDuration("REQUEST_TIMEOUT", 6*time.Minute),
			SlowRequest:    apiCfg.MayDuration("SLOW_REQUEST", 2*time.Second),
			AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", []string{"*"}),
		},
		Modules: []module.Module{syncMod},
	})

	schedDone := make(chan error, 1)
	go func() { schedDone <- syncMod.Scheduler().Run(ctx) }()

	srvDone := make(chan error, 1)
	go func() { srvDone <- srv.Run(ctx) }()

	code := 0
	select {
	case <-ctx.Done():
	case err := <-srvDone:
		if err != nil {
			l.Error().Err(err).Msg("http server stopped")
			code = 1
		}
		stop()
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, context.Canceled) {
		l.Error().Err(err).Msg("http shutdown")
	}
	if err := <-schedDone; err != nil {
		l.Error().Err(err).Msg("scheduler stopped")
	}
	l.Info().Msg("bye")
	return code
}
