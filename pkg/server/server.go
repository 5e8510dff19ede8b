// Package server exposes the sampler's state over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"ressample/pkg/log"
	"ressample/pkg/resolver"
	"ressample/pkg/sampler"
	"ressample/pkg/sink"
)

const shutdownTimeout = 10 * time.Second

// StatsSource reports sampler counters.
type StatsSource interface {
	Stats() sampler.Stats
}

// StatusServer serves health, the latest snapshot, the tracked volumes and Prometheus metrics.
type StatusServer struct {
	echo       *echo.Echo
	version    string
	latest     *sink.Latest
	stats      StatsSource
	resolution *resolver.Result
	registry   *prometheus.Registry
}

// New creates a status server with its routes registered.
func New(version string, latest *sink.Latest, stats StatsSource, resolution *resolver.Result) *StatusServer {
	if resolution == nil {
		resolution = &resolver.Result{}
	}

	s := &StatusServer{
		echo:       echo.New(),
		version:    version,
		latest:     latest,
		stats:      stats,
		resolution: resolution,
		registry:   prometheus.NewRegistry(),
	}

	s.registerMetrics()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler with every route mounted.
func (s *StatusServer) Handler() http.Handler {
	return s.echo
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *StatusServer) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", s.version).
			Msg("Starting status server")

		err := s.echo.Start(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *StatusServer) Shutdown() error {
	log.Info().Msg("Shutting down status server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Status server shutdown failed")
		return err
	}

	log.Info().Msg("Status server stopped")
	return nil
}

func (s *StatusServer) setupRoutes() {
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${status} ${method} ${uri} (${latency_human})\n",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
	}))
	s.echo.Use(middleware.Recover())

	s.echo.GET("/health", s.getHealth)
	s.echo.GET("/snapshot", s.getSnapshot)
	s.echo.GET("/volumes", s.getVolumes)
	s.echo.GET("/metrics", echo.WrapHandler(s.metricsHandler()))
}
