package store

import (
	"context"
	"errors"
	"time"

	"surveysync/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is what *pgxpool.Pool and pgx.Tx have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced adapts a pgxQuerier to RowQuerier and reports each call to the tracer
type traced struct {
	q      pgxQuerier
	tracer pg.QueryTracer
	slow   time.Duration // < 0 never slow
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.q.Exec(ctx, sql, args...)
	t.report(ctx, sql, args, start, err)
	return ct, err
}

// Query reports when the result set opens; scan time is not included
func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.q.Query(ctx, sql, args...)
	t.report(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return pgxRows{rs}, nil
}

// QueryRow reports once Scan returns so the scan error is captured
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := t.q.QueryRow(ctx, sql, args...)
	return scanHook{r: r, done: func(err error) { t.report(ctx, sql, args, start, err) }}
}

func (t traced) report(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if t.tracer == nil {
		return
	}
	elapsed := time.Since(start)
	t.tracer.OnQuery(ctx, pg.QueryEvent{
		SQL:     sql,
		Args:    args,
		Elapsed: elapsed,
		Err:     err,
		Slow:    t.slow >= 0 && elapsed >= t.slow,
	})
}

// pgAdapter is the pool backed TxRunner the store publishes
type pgAdapter struct {
	traced
	p *pg.PG
}

func newPGAdapter(p *pg.PG) *pgAdapter {
	slow := time.Duration(p.SlowMs) * time.Millisecond
	if p.SlowMs < 0 {
		slow = -1
	}
	return &pgAdapter{traced: traced{q: p.Pool, tracer: p.Tracer, slow: slow}, p: p}
}

// Ping runs SELECT 1 through the traced path
func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.p == nil {
		return errors.New("pg: adapter not open")
	}
	var one int
	return a.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (a *pgAdapter) Close() error {
	a.p.Close()
	return nil
}

// Tx commits when fn returns nil and rolls back otherwise
// statements inside fn are traced like pool statements
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.p.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	return runTx(ctx, tx, traced{q: tx, tracer: a.tracer, slow: a.slow}, fn)
}

// txEnd is the commit and rollback half of pgx.Tx
type txEnd interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

func runTx(ctx context.Context, tx txEnd, q RowQuerier, fn func(q RowQuerier) error) error {
	if err := fn(q); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

type scanHook struct {
	r    pgx.Row
	done func(error)
}

func (s scanHook) Scan(dst ...any) error {
	err := s.r.Scan(dst...)
	s.done(err)
	return err
}

// pgxRows adds Columns to pgx.Rows
type pgxRows struct{ pgx.Rows }

func (r pgxRows) Columns() []string {
	fds := r.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	return cols
}
