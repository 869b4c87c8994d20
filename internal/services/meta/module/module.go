// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "surveysync/internal/modkit"
	"surveysync/internal/modkit/httpkit"
	str "surveysync/internal/platform/strings"
	"surveysync/internal/platform/version"

	metahttp "surveysync/internal/services/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	built modkit.Built
	deps  metahttp.Deps
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	d := metahttp.Deps{
		ServiceName: version.Info().Service,
		StartedAt:   time.Now(),
	}
	if deps.PG != nil {
		d.PG = deps.PG
	}
	return &Module{built: b, deps: d}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.built.Name, "meta") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.built.Prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
