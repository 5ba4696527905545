// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftboard Contributors

package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"
)

// Server wraps the HTTP listener serving the application routes.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
}

// NewServer creates the application server bound to host:port.
func NewServer(host string, port int, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logger: logger,
	}
}

// Addr returns the bound listen address once Start has run.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Start binds the listener and serves in a background goroutine. The
// returned channel yields a serve error, if any.
func (s *Server) Start() (<-chan error, error) {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, oops.Code("WEB_LISTEN_FAILED").
			With("addr", s.httpServer.Addr).
			Wrap(err)
	}
	s.listener = listener

	errCh := make(chan error, 1)
	go func() {
		if serveErr := s.httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	s.logger.Info("web server listening", "addr", s.Addr())
	return errCh, nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return oops.Code("WEB_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}
