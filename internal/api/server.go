// Package api exposes the signal pipeline and the screener over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/logger"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/marketdata"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/monitoring"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/screener"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/signals"
)

// Options wires the server to its collaborators
type Options struct {
	Provider    marketdata.Provider
	Params      indicators.Params
	Scan        screener.Config
	Health      *monitoring.HealthChecker
	Observer    signals.Observer
	Log         *logger.Logger
	MetricsPath string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps the Echo HTTP server
type Server struct {
	echo *echo.Echo
	opts Options
	log  *logger.Logger
}

// NewServer creates the server and registers every route
func NewServer(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.Health == nil {
		opts.Health = monitoring.NewHealthChecker(time.Hour)
	}
	log := opts.Log.With("component", "api")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Debug("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	handler := &SignalsHandler{
		provider: opts.Provider,
		params:   opts.Params,
		scan:     opts.Scan,
		health:   opts.Health,
		observer: opts.Observer,
		log:      log,
	}
	handler.RegisterRoutes(e)

	e.GET(opts.MetricsPath, echo.WrapHandler(monitoring.NewMetricsHandler()))
	e.GET("/healthz", echo.WrapHandler(opts.Health))

	return &Server{echo: e, opts: opts, log: log}
}

// Start listens on addr until the context is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server: listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.log.Info("http server: stopped gracefully")
	return nil
}

// Echo returns the underlying Echo instance
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
