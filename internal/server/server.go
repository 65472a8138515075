// Package server exposes the normalizer, calculators and import history
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ogulcanaydogan/tokalator/internal/config"
	"github.com/ogulcanaydogan/tokalator/pkg/economics"
	"github.com/ogulcanaydogan/tokalator/pkg/importer"
	"github.com/ogulcanaydogan/tokalator/pkg/providers"
	"github.com/ogulcanaydogan/tokalator/pkg/tokenizer"
	"github.com/ogulcanaydogan/tokalator/pkg/tracker"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "tokalator-api"

const shutdownTimeout = 10 * time.Second

const (
	defaultMaxUploadBytes = 10 << 20
	defaultMaxTextBytes   = 1 << 20
)

// Options configures request handling.
type Options struct {
	BasePath       string
	MaxUploadBytes int64
	MaxTextBytes   int64
	AllowedOrigins []string
	RPS            float64
	Burst          int
	Version        string
}

// OptionsFromConfig builds Options from the server config section.
func OptionsFromConfig(cfg config.ServerConfig, version string) Options {
	return Options{
		BasePath:       cfg.BasePath,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MaxTextBytes:   cfg.MaxTextBytes,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RPS:            cfg.RateLimit.RPS,
		Burst:          cfg.RateLimit.Burst,
		Version:        version,
	}
}

// Server provides the Tokalator HTTP API.
type Server struct {
	opts      Options
	table     *providers.Table
	importer  *importer.Importer
	calc      *economics.Calculator
	estimator *tokenizer.Estimator
	tracker   *tracker.UsageTracker // nil when import history is disabled
	mux       *http.ServeMux
	handler   http.Handler
	logger    *slog.Logger
}

// NewServer creates an API server. t may be nil, in which case the history
// endpoints are not registered.
func NewServer(opts Options, table *providers.Table, t *tracker.UsageTracker, logger *slog.Logger) *Server {
	opts.BasePath = strings.TrimRight(opts.BasePath, "/")
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.MaxTextBytes <= 0 {
		opts.MaxTextBytes = defaultMaxTextBytes
	}

	s := &Server{
		opts:      opts,
		table:     table,
		importer:  importer.New(table),
		calc:      economics.NewCalculator(table),
		estimator: tokenizer.NewEstimator(table),
		tracker:   t,
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	s.routes()

	middlewares := []Middleware{
		Recovery(logger),
		Logging(logger),
		CORS(opts.AllowedOrigins),
	}
	if opts.RPS > 0 {
		middlewares = append(middlewares, NewIPRateLimiter(opts.RPS, opts.Burst).Limit)
	}
	s.handler = Chain(s.mux, middlewares...)
	return s
}

func (s *Server) routes() {
	s.handle("GET /health", s.handleHealth)
	s.handle("POST /csv/parse", s.handleParse)
	s.handle("POST /economics/quality", s.handleQuality)
	s.handle("POST /economics/breakeven", s.handleBreakeven)
	s.handle("POST /economics/caching", s.handleCaching)
	s.handle("GET /pricing", s.handlePricing)
	s.handle("POST /tokens/count", s.handleTokens)

	if s.tracker != nil {
		s.handle("GET /usage", s.handleUsage)
		s.handle("GET /usage/summary", s.handleSummary)
		s.handle("GET /imports", s.handleImports)
		s.handle("GET /imports/{id}", s.handleImport)
	}
}

// handle registers "METHOD /path" under the base path.
func (s *Server) handle(pattern string, h http.HandlerFunc) {
	method, path, _ := strings.Cut(pattern, " ")
	s.mux.HandleFunc(method+" "+s.opts.BasePath+path, h)
}

// Handler returns the HTTP handler for this server, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api started", "listen", cfg.Listen, "base_path", s.opts.BasePath, "history", s.tracker != nil)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	s.logger.Info("api stopped")
	return nil
}
