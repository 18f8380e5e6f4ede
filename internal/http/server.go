package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/yungbote/optima-backend/internal/config"
)

type Server struct {
	srv *http.Server
}

func NewServer(cfg config.HTTPConfig, rc RouterConfig) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(rc),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
			IdleTimeout:       cfg.IdleTimeout.Duration,
		},
	}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Serve blocks until the listener fails or Shutdown is called; the latter returns nil.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.srv.Shutdown(ctx)
}
