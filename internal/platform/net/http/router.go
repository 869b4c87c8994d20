package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler is the handler shape modules register
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the routing surface modules mount against
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	Use(mw ...func(http.Handler) http.Handler)

	// Group shares middleware without adding a prefix
	Group(fn func(Router))
	// Route mounts fn under pattern
	Route(pattern string, fn func(Router))

	Mux() http.Handler
}

// AdaptChi wraps a chi mux as a Router
func AdaptChi(m *chi.Mux) Router { return chiRouter{r: m} }

type chiRouter struct{ r chi.Router }

func (c chiRouter) Get(p string, h Handler)  { c.r.Get(p, h) }
func (c chiRouter) Post(p string, h Handler) { c.r.Post(p, h) }

func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Mux() http.Handler { return c.r }
