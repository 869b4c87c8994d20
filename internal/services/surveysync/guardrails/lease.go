package guardrails

import (
	"context"
	"errors"

	"surveysync/internal/platform/store"
)

// ErrLeaseHeld signals another process is running a sync already
var ErrLeaseHeld = errors.New("surveysync: run lease already held")

// LeaseKey is the advisory lock key shared by every sync process
const LeaseKey int64 = 0x5355_5256_5359_4e43 // "SURVSYNC"

// Lease runs do while holding a cross-process lock, or returns ErrLeaseHeld
type Lease func(ctx context.Context, do func(context.Context) error) error

// NoLease runs do directly
func NoLease(ctx context.Context, do func(context.Context) error) error { return do(ctx) }

// MakeAdvisoryLease returns a Lease backed by pg_try_advisory_xact_lock
// the lock lives in a transaction that stays open for the duration of do
// and is released on commit or rollback; do's own writes use separate units of work
func MakeAdvisoryLease(db store.TxRunner, key int64) Lease {
	if db == nil {
		return NoLease
	}
	return func(ctx context.Context, do func(context.Context) error) error {
		return db.Tx(ctx, func(q store.RowQuerier) error {
			var ok bool
			if err := q.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock($1)`, key).Scan(&ok); err != nil {
				return err
			}
			if !ok {
				return ErrLeaseHeld
			}
			return do(ctx)
		})
	}
}
