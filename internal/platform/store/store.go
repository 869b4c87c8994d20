// Package store owns the postgres connection the sync engine reads and writes through
package store

import (
	"context"
	"errors"
	"fmt"

	"surveysync/internal/platform/logger"

	"github.com/rs/zerolog"
)

// Row is a single scanned result
type Row interface {
	Scan(dest ...any) error
}

// Rows is an open result set; Close must be called
type Rows interface {
	Row
	Next() bool
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what a write touched
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface repos are written against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also scope work to one transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Store bundles the open database with the logger it was opened with
// PG stays nil when postgres is disabled
type Store struct {
	Log logger.Logger
	PG  TxRunner
}

// Option adjusts a Store before backends open
type Option func(*Store)

// WithLogger sets the logger backends report through
func WithLogger(l logger.Logger) Option { return func(s *Store) { s.Log = l } }

// Open connects the backends cfg enables
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	if !cfg.PG.Enabled {
		return s, nil
	}
	if _, err := openPG(ctx, cfg, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Guard pings every open backend and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil")
	}
	p, ok := s.PG.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("pg: %w", err)
	}
	return nil
}

// Close shuts every open backend; a Store without backends closes cleanly
func (s *Store) Close(context.Context) error {
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
