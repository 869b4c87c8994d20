package store

import (
	"context"
	"fmt"
	"time"

	"surveysync/internal/platform/store/pg"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
	backoffStart          = 150 * time.Millisecond
	backoffCeiling        = 2 * time.Second
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	var mut func(*pgxpool.Config)
	if cfg.AppName != "" {
		mut = func(pc *pgxpool.Config) {
			pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
		}
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, mut)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = defaultPingTimeout
	}

	// Connection guardrails: ping with retry/backoff using the *pool* directly
	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Pool.Ping(toCtx) // <-- no adapter, no SQL trace line
		cancel()

		if lastErr == nil {
			a := newPGAdapter(p) // publish adapter only after the pool is healthy
			s.PG = a
			return a, nil
		}
		s.Log.Warn().Err(lastErr).Int("attempt", i+1).Int("of", attempts).Msg("postgres not ready")

		select {
		case <-ctx.Done():
			p.Close() // close the pool we opened
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, backoffCeiling)
	}

	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}
