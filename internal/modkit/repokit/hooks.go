package repokit

import "context"

// BeginHook runs first inside every tx, e.g. SET LOCAL statement_timeout
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks returns inner with hooks run in order at the start of each Tx
// statements outside a tx go straight to inner
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	return hookedTx{TxRunner: inner, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hook := range h.hooks {
			if err := hook(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}
