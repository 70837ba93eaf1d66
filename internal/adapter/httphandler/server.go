package httphandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	handlerTimeout    = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 30 * time.Second
)

// HTTPServer serves the catalog API on an already bound listener.
type HTTPServer struct {
	srv *http.Server
	ln  net.Listener
}

// NewHTTPServer binds addr right away, so a busy port fails at startup
// instead of inside Run.
func NewHTTPServer(
	ctx context.Context, addr string, handler http.Handler,
) (*HTTPServer, error) {
	const op = "NewHTTPServer"

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	handler = http.TimeoutHandler(handler, handlerTimeout, "unavailable")
	srv := &http.Server{
		Handler:           LogRequests(handler),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	return &HTTPServer{srv: srv, ln: ln}, nil
}

// Addr is the bound address, useful when addr had port 0.
func (s *HTTPServer) Addr() string {
	return s.ln.Addr().String()
}

func (s *HTTPServer) Run(stopFn context.CancelFunc) {
	const op = "HTTPServer.Run"
	log := slog.With("op", op)

	defer stopFn()
	log.Info("listening", "addr", s.Addr())
	err := s.srv.Serve(s.ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped unexpectedly", "err", err)
	}
}

func (s *HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	if err := s.srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return
	}
	// The listener is still open when Run was never called.
	if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warn("failed to close listener", "err", err)
	}
	log.Info("http server is closed")
}
