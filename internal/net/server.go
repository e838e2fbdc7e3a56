package net

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mage-engine/mage/internal/config"
	"github.com/mage-engine/mage/internal/worker"
)

// Server hosts simulation contexts for remote engines.
type Server struct {
	listener net.Listener
	http     *http.Server
	handler  *Handler
	log      *zap.Logger
}

func NewServer(cfg config.ServerConfig, opts worker.Options, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.BindAddress)
	if err != nil {
		return nil, err
	}
	h := NewHandler(opts, log)
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, h)
	return &Server{
		listener: ln,
		http: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		handler: h,
		log:     log,
	}, nil
}

// Serve blocks until Shutdown is called.
func (s *Server) Serve() error {
	if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections. Hijacked websocket sessions are not
// tracked by net/http, so live sessions are waited on separately until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	done := make(chan struct{})
	go func() {
		s.handler.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("simulation sessions still open at shutdown")
	}
	return err
}

// Addr returns the listener's address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}
