// Package api exposes the tutor over HTTP.
//
// Endpoints:
//
//	POST /api/chat   ask a question with optional conversation history
//	GET  /api/stats  corpus statistics
//	GET  /health     liveness probe
//	GET  /ready      readiness probe (pings the database)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: recovery, request ID, logging, CORS
//   - health.go: health check endpoints
//   - chat.go: question answering endpoint
//   - stats.go: corpus statistics endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askphys/askphys/internal/log"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:3400"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads to stop slowloris clients.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Generation can take a while, so this is generous.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the keep-alive idle limit.
	IdleTimeout = 120 * time.Second
)

// Server is the HTTP server for the tutor API.
type Server struct {
	mux    *http.ServeMux
	cors   []string
	logger log.Logger

	health *HealthHandler
	chat   *ChatHandler
	stats  *StatsHandler
}

// NewServer creates a server with all routes registered.
// corsOrigins lists the origins allowed to call the API from a browser;
// "*" allows any.
func NewServer(tutor Tutor, counter ChunkCounter, pool *pgxpool.Pool, corsOrigins []string, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:    mux,
		cors:   corsOrigins,
		logger: logger,
		health: NewHealthHandler(pool, logger),
		chat:   NewChatHandler(tutor, logger),
		stats:  NewStatsHandler(counter, logger),
	}

	s.health.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	s.stats.RegisterRoutes(mux)

	return s
}

// Handler returns the handler with middleware applied.
// Order: recovery -> requestID -> logging -> CORS -> routes.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		requestIDMiddleware,
		loggingMiddleware(s.logger),
		corsMiddleware(s.cors),
	)
}

// Run starts the server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
