// Package web serves scored transactions over HTTP and Server-Sent Events.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/FraudStream/internal/generator"
	"github.com/Alias1177/FraudStream/internal/stream"
)

const shutdownTimeout = 10 * time.Second

// Options configures the HTTP surface
type Options struct {
	CORSOrigins  []string
	BatchSize    int
	MaxBatchSize int
	// Heartbeat is the interval of SSE keep-alive comments. Zero disables them.
	Heartbeat time.Duration
}

// Server is the FraudStream web server
type Server struct {
	gen    *generator.Generator
	hub    *stream.Hub
	rngs   *generator.RandFactory
	opts   Options
	router *gin.Engine
	logger zerolog.Logger
	now    func() time.Time
}

// NewServer creates a new web server
func NewServer(gen *generator.Generator, hub *stream.Hub, rngs *generator.RandFactory, opts Options) *Server {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	if opts.MaxBatchSize < opts.BatchSize {
		opts.MaxBatchSize = opts.BatchSize
	}

	router := gin.New()

	s := &Server{
		gen:    gen,
		hub:    hub,
		rngs:   rngs,
		opts:   opts,
		router: router,
		logger: log.With().Str("component", "web").Logger(),
		now:    time.Now,
	}

	router.Use(gin.Recovery(), s.requestLogger())
	if corsCfg := corsConfig(opts.CORSOrigins); corsCfg.AllowAllOrigins || len(corsCfg.AllowOrigins) > 0 {
		router.Use(cors.New(corsCfg))
	}

	api := router.Group("/api")
	{
		api.GET("/transactions", s.handleTransactions)
		api.GET("/transactions/stream", s.handleStream)
		api.GET("/health", s.handleHealth)
		api.GET("/regions", s.handleRegions)
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// SSE handlers return once the hub closes, so Shutdown does not wait on them
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}
