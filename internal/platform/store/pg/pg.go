// Package pg opens the pgx pool behind the store and owns query tracing
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the pool subset of store.PGConfig
type Config struct {
	URL      string
	MaxConns int32
	SlowMs   int
}

// PG holds the pool plus the tracer every adapter call reports to
// Tracer nil disables tracing; SlowMs < 0 never flags a query slow
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// newPool is swapped in tests so Open runs without a server
var newPool = pgxpool.NewWithConfig

// Open parses cfg.URL, applies tune, and builds the pool
// the pool connects lazily; callers ping before publishing it
func Open(ctx context.Context, cfg Config, tracer QueryTracer, tune func(*pgxpool.Config)) (*PG, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if tune != nil {
		tune(pc)
	}

	pool, err := newPool(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

// Close releases the pool; safe on nil
func (p *PG) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}
