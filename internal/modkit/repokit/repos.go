// Package repokit is the small surface repositories are written against
package repokit

import (
	"context"

	"surveysync/internal/platform/store"
)

type (
	// Queryer runs statements on the pool or inside a tx
	Queryer = store.RowQuerier
	// TxRunner is a Queryer that can also open a tx
	TxRunner = store.TxRunner
)

// WithTx runs fn in one transaction on db
func WithTx(ctx context.Context, db TxRunner, fn func(q Queryer) error) error {
	return db.Tx(ctx, fn)
}
