package guardrails

import (
	"context"
	"errors"
	"testing"

	"surveysync/internal/platform/store"
)

type lockRow struct{ ok bool }

func (r lockRow) Scan(dest ...any) error {
	*(dest[0].(*bool)) = r.ok
	return nil
}

type lockDB struct {
	store.TxRunner
	ok  bool
	txs int
}

func (d *lockDB) QueryRow(context.Context, string, ...any) store.Row { return lockRow{ok: d.ok} }

func (d *lockDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	d.txs++
	return fn(d)
}

func TestAdvisoryLease_Acquired(t *testing.T) {
	db := &lockDB{ok: true}
	ran := false
	err := MakeAdvisoryLease(db, LeaseKey)(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil || !ran || db.txs != 1 {
		t.Fatalf("err=%v ran=%v txs=%d", err, ran, db.txs)
	}
}

func TestAdvisoryLease_Held(t *testing.T) {
	db := &lockDB{ok: false}
	err := MakeAdvisoryLease(db, LeaseKey)(context.Background(), func(context.Context) error {
		t.Fatal("do must not run when the lease is held")
		return nil
	})
	if !errors.Is(err, ErrLeaseHeld) {
		t.Fatalf("err = %v want ErrLeaseHeld", err)
	}
}

func TestAdvisoryLease_NilDBRunsDirect(t *testing.T) {
	ran := false
	_ = MakeAdvisoryLease(nil, LeaseKey)(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if !ran {
		t.Fatal("expected direct run")
	}
}
