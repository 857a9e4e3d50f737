package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"mercator-hq/ganymede/pkg/api/handlers"
	"mercator-hq/ganymede/pkg/api/middleware"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/telemetry/health"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// Server is the Ganymede HTTP server.
type Server struct {
	config       *config.ServerConfig
	engine       *guardrail.Engine
	recorder     handlers.VerdictRecorder
	collector    *metrics.Collector
	checker      *health.Checker
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Options bundles the server's collaborators. Recorder, Collector and
// Checker may be nil.
type Options struct {
	Engine    *guardrail.Engine
	Recorder  handlers.VerdictRecorder
	Collector *metrics.Collector
	Checker   *health.Checker
	Logger    *slog.Logger
}

// New creates the server.
func New(cfg *config.ServerConfig, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	checker := opts.Checker
	if checker == nil {
		checker = health.New(0)
	}

	return &Server{
		config:       cfg,
		engine:       opts.Engine,
		recorder:     opts.Recorder,
		collector:    opts.Collector,
		checker:      checker,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}
}

// Handler builds the route table wrapped in the middleware chain.
// Exposed for tests and embedding.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	var gm *metrics.GuardrailMetrics
	var hm *metrics.HTTPMetrics
	if s.collector != nil {
		gm = s.collector.Guardrail
		hm = s.collector.HTTP
		mux.Handle("/metrics", s.collector.Handler())
	}

	mux.Handle("/v1/guardrails/check", handlers.NewCheckHandler(s.engine, s.recorder, gm, s.logger))
	mux.Handle("/v1/guardrails/config", handlers.NewConfigHandler(s.engine))
	mux.Handle("/v1/guardrails/reload", handlers.NewReloadHandler(s.engine, gm, s.logger))
	mux.Handle("/health", s.checker.LivenessHandler())
	mux.Handle("/ready", s.checker.ReadinessHandler())

	var handler http.Handler = mux
	handler = middleware.Metrics(hm)(handler)
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.CORS(s.config.CORS)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.logger)(handler)

	return handler
}

// Start runs the server and blocks until shutdown by context
// cancellation, SIGINT/SIGTERM, or Stop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Stop requests shutdown from another goroutine.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown gracefully drains in-flight requests within the configured
// timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	s.logger.Info("server stopped")
	return nil
}
