package modkit

import (
	"net/http"

	"surveysync/internal/modkit/httpkit"
	pstrings "surveysync/internal/platform/strings"
)

// Option adjusts how a module is named and mounted
type Option func(*Built)

// WithName sets the module name used in logs and the port registry
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix mounts the module under prefix, e.g. /meta
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends module local middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithRegister adds routes after the module's own
func WithRegister(fn func(httpkit.Router)) Option {
	return func(b *Built) { b.Register = fn }
}

// Built is the result of applying options
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Register func(httpkit.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	if b.Register == nil {
		b.Register = func(httpkit.Router) {}
	}
	return b
}

// Mount attaches own then Register with Mw applied
// without a prefix the routes go in a group so Mw stays module local
func (b Built) Mount(r httpkit.Router, own func(httpkit.Router)) {
	mount := func(rr httpkit.Router) {
		own(rr)
		b.Register(rr)
	}
	if b.Prefix == "" {
		r.Group(func(g httpkit.Router) {
			if len(b.Mw) > 0 {
				g.Use(b.Mw...)
			}
			mount(g)
		})
		return
	}
	httpkit.MountUnder(r, pstrings.MustPrefix(b.Prefix), b.Mw, mount)
}
