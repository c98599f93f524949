package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"chordlab/relay/pkg/config"
	"chordlab/relay/pkg/relay/handlers"
	"chordlab/relay/pkg/relay/middleware"
	"chordlab/relay/pkg/session"
	"chordlab/relay/pkg/telemetry/metrics"
)

// Dependencies holds the collaborators the server routes requests to.
// Recorder and Metrics may be nil when usage accounting or metrics are
// disabled.
type Dependencies struct {
	Registry handlers.BackendRegistry
	Sessions *session.Store
	Locks    *session.KeyedMutex
	Agents   handlers.AgentStore
	Recorder handlers.TurnRecorder
	Metrics  *metrics.Collector
}

// Server is the relay's HTTP server.
type Server struct {
	config       *config.ServerConfig
	deps         Dependencies
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a relay server from configuration and collaborators.
func NewServer(cfg *config.ServerConfig, deps Dependencies) *Server {
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	// WriteTimeout stays zero: the stream route holds the response open
	// for the whole backend generation.
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.ReadTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting relay server",
			"address", s.config.ListenAddress,
			"backends", s.deps.Registry.Count(),
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server. In-flight streams get the
// configured shutdown timeout to finish before connections are forced
// closed.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("relay server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	streamHandler := handlers.NewStreamChatHandler(
		s.deps.Registry, s.deps.Sessions, s.deps.Locks, s.deps.Recorder, turnMetrics(s.deps.Metrics))
	chatHandler := handlers.NewChatHandler(s.deps.Registry)
	providersHandler := handlers.NewProvidersHandler(s.deps.Registry)
	healthHandler := handlers.NewHealthHandler(s.deps.Registry)

	mux.Handle("/api/chat/stream", streamHandler)
	mux.Handle("/api/chat", chatHandler)
	mux.Handle("/api/providers", providersHandler)
	mux.Handle("/healthz", healthHandler)

	if s.deps.Agents != nil {
		mux.Handle("/api/agents", handlers.NewAgentListHandler(s.deps.Agents))
		mux.Handle("/api/agents/", handlers.NewAgentHandler(s.deps.Agents))
	}

	if s.deps.Metrics != nil {
		mux.Handle("/metrics", s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux

	if s.deps.Metrics != nil {
		handler = s.instrument(handler)
	}

	handler = middleware.CORSMiddleware(s.corsConfig())(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Health reports whether the server is running and at least one backend
// is healthy.
func (s *Server) Health() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return fmt.Errorf("server is not running")
	}
	if s.deps.Registry.HealthyCount() == 0 {
		return fmt.Errorf("no healthy backends available")
	}
	return nil
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// corsConfig builds the middleware CORS configuration, overriding the
// default origins with the configured ones.
func (s *Server) corsConfig() *middleware.CORSConfig {
	cfg := middleware.DefaultCORSConfig()
	if len(s.config.CORS.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = s.config.CORS.AllowedOrigins
	}
	return cfg
}

// turnMetrics adapts a possibly-nil collector to the handler interface.
// A typed nil inside a non-nil interface would dodge the handler's nil
// check.
func turnMetrics(c *metrics.Collector) handlers.TurnMetrics {
	if c == nil {
		return nil
	}
	return c
}

// instrument records per-request counters and latency for each route.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.deps.Metrics.RecordHTTPRequest(routeLabel(r.URL.Path), sw.status, time.Since(start))
	})
}

// routeLabel collapses per-agent paths into one label to keep metric
// cardinality bounded.
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/api/agents/") {
		return "/api/agents/{id}"
	}
	return path
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Flush forwards flushes so SSE streaming works through instrumentation.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
