package repokit

// Binder makes a repo of type T bound to a Queryer, so the same repo
// code runs on the pool and inside a tx
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a constructor to Binder
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind panics on a nil q, which is always a wiring bug
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return b.Bind(q)
}
