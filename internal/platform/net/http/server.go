package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"surveysync/internal/platform/config"
	"surveysync/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server owns the chi mux and the listener behind it
type Server struct {
	mux *chi.Mux
	srv *stdhttp.Server
}

// NewServer listens on API_PORT, default :4000
func NewServer(cfg config.Conf) *Server {
	m := chi.NewRouter()
	return &Server{
		mux: m,
		srv: &stdhttp.Server{
			Addr:              cfg.MayString("API_PORT", ":4000"),
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router exposes the mux for mounting
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr is the configured listen address
func (s *Server) Addr() string { return s.srv.Addr }

// Run blocks until the listener fails or Shutdown is called
// a clean shutdown returns nil
func (s *Server) Run(context.Context) error {
	logger.Named("http").Info().Str("addr", s.srv.Addr).Msg("http listening")
	if err := s.srv.ListenAndServe(); !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in flight requests until ctx ends
func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
