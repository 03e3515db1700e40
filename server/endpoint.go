package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type (
	Config struct {
		Address         string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		IdleTimeout     time.Duration
		ShutdownTimeout time.Duration
	}

	// Server couples an http.Server with the timeout used to drain it.
	Server struct {
		name            string
		srv             *http.Server
		shutdownTimeout time.Duration
	}
)

func newServer(name string, config Config, handler http.Handler) *Server {
	return &Server{
		name: name,
		srv: &http.Server{
			Addr:         config.Address,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
			Handler:      handler,
		},
		shutdownTimeout: config.ShutdownTimeout,
	}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.srv.Addr)
	}

	return s.Serve(ctx, l)
}

func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errc := make(chan error, 1)

	go func() {
		log.Infof("starting %s server at %s", s.name, l.Addr())
		errc <- s.srv.Serve(l)
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "%s server failed", s.name)
		}

		return nil
	case <-ctx.Done():
	}

	log.Infof("%s server is shutting down...", s.name)

	sctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.srv.SetKeepAlivesEnabled(false)

	if err := s.srv.Shutdown(sctx); err != nil {
		return errors.Wrapf(err, "failed to gracefully shutdown %s server", s.name)
	}

	return nil
}
