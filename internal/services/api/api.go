// Package api provides the HTTP API for the application
package api

import (
	"surveysync/internal/platform/config"
	phttp "surveysync/internal/platform/net/http"
	"surveysync/internal/platform/store"

	"surveysync/internal/modkit"
	"surveysync/internal/modkit/httpkit"
	"surveysync/internal/modkit/module"

	metamod "surveysync/internal/services/meta/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	EnableProfiler bool
	Stack          httpkit.StackOptions

	// Modules are mounted after meta, in order
	Modules []module.Module
}

// Mount mounts the API service onto the given router
// routes live at the root so existing monitors keep their paths
// call it on a fresh router, the common stack is installed with Use
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG = opt.Store.PG
	}

	mods := append([]module.Module{metamod.New(deps)}, opt.Modules...)

	r.Use(httpkit.CommonStack(opt.Stack)...)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	for _, m := range mods {
		// register each module's ports under its own name (for cross-module lookups)
		module.Register(m.Name(), m.Ports())

		m.MountRoutes(r)
	}
}
