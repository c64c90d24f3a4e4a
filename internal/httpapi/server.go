// Package httpapi exposes conversion, formatting and parsing over HTTP.
// Every request gets an ID and a default locale taken from the locale
// query parameter or the Accept-Language header.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nowwaveradio/jdatetime/internal/config"
	"github.com/nowwaveradio/jdatetime/internal/jdate"
	"github.com/nowwaveradio/jdatetime/internal/locale"
	"github.com/nowwaveradio/jdatetime/internal/logger"
	"github.com/nowwaveradio/jdatetime/internal/metrics"
	"github.com/nowwaveradio/jdatetime/internal/presets"
	"github.com/nowwaveradio/jdatetime/internal/processor"
)

// Server wires the HTTP handlers to the processor
type Server struct {
	config    *config.Config
	processor *processor.Processor
	presets   *presets.Resolver
	store     *locale.Store
	validate  *validator.Validate
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	zone      jdate.Zone
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithLogger replaces the global logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock replaces time.Now for /v1/today
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New builds a Server from cfg. Metrics are registered on a private
// registry served at /metrics when server.metrics_enabled is set.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	s := &Server{
		config:   cfg,
		store:    locale.NewStore(),
		validate: newValidator(),
		logger:   logger.Get().Logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Server.MetricsEnabled {
		s.registry = prometheus.NewRegistry()
		s.metrics = metrics.New(s.registry)
	}

	resolver, err := presets.NewResolver(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading presets: %w", err)
	}
	s.presets = resolver

	zone, err := cfg.Zone()
	if err != nil {
		return nil, err
	}
	s.zone = zone

	procOpts := []processor.Option{processor.WithLogger(s.logger)}
	if s.metrics != nil {
		procOpts = append(procOpts, processor.WithRecorder(s.metrics))
	}
	proc, err := processor.New(cfg, procOpts...)
	if err != nil {
		return nil, fmt.Errorf("initializing processor: %w", err)
	}
	s.processor = proc

	return s, nil
}

// Router returns the HTTP handler with all routes mounted
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)
	r.Use(s.observe)
	r.Use(s.requestLocale)

	r.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/today", s.handleToday)
		r.Get("/convert/to-jalali", s.handleToJalali)
		r.Get("/convert/to-gregorian", s.handleToGregorian)
		r.Post("/parse", s.handleParse)
		r.Post("/format", s.handleFormat)
		r.Post("/batch", s.handleBatch)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Server.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeoutSeconds) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	}
}
