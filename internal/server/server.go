// Package server exposes the task graph over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/josephgoksu/taskgraph/internal/app"
	"github.com/josephgoksu/taskgraph/internal/metrics"
)

const (
	// maxBodyBytes caps request bodies; blueprints are the largest payload.
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

type Options struct {
	Addr           string
	AllowedOrigins []string
	Logger         *slog.Logger
	// Metrics, when set, is served on /metrics.
	Metrics *metrics.Metrics
}

type Server struct {
	tasks    *app.TaskApp
	projects *app.ProjectApp
	metrics  *metrics.Metrics
	logger   *slog.Logger
	origins  map[string]struct{}
	server   *http.Server
}

func New(actx *app.Context, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		tasks:    app.NewTaskApp(actx),
		projects: app.NewProjectApp(actx),
		metrics:  opts.Metrics,
		logger:   logger,
		origins:  make(map[string]struct{}, len(opts.AllowedOrigins)),
	}
	for _, o := range opts.AllowedOrigins {
		s.origins[o] = struct{}{}
	}
	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.registerRoutes()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.logger.Info("api server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return <-errCh
}
