// Package server wires the HTTP handlers to chi.
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/TFMV/janus/cmd/server/config"
	"github.com/TFMV/janus/pkg/errors"
	"github.com/TFMV/janus/pkg/handlers"
)

// Server serves the query API over HTTP.
type Server struct {
	config        *config.Config
	logger        zerolog.Logger
	queryHandler  *handlers.QueryHandler
	healthHandler *handlers.HealthHandler
	middlewares   []func(http.Handler) http.Handler

	mu    sync.Mutex
	addr  string
	ready chan struct{}
}

// New creates a new server. Middlewares are mounted in the given order,
// outermost first.
func New(
	cfg *config.Config,
	queryHandler *handlers.QueryHandler,
	healthHandler *handlers.HealthHandler,
	logger zerolog.Logger,
	middlewares ...func(http.Handler) http.Handler,
) *Server {
	return &Server{
		config:        cfg,
		logger:        logger.With().Str("component", "server").Logger(),
		queryHandler:  queryHandler,
		healthHandler: healthHandler,
		middlewares:   middlewares,
		ready:         make(chan struct{}),
	}
}

// Routes builds the chi router with all middleware and endpoints mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.middlewares...)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query", s.queryHandler.HandleQuery)
		r.Post("/explain", s.queryHandler.HandleExplain)
		r.Post("/classify", s.queryHandler.HandleClassify)
	})

	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/readyz", s.healthHandler.HandleReady)

	return r
}

// Serve binds the configured address and serves until ctx is canceled,
// then drains in-flight requests within the shutdown timeout. Serve may be
// called once.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Address)
	if err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "listen failed")
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Routes(),
		BaseContext: func(net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		s.logger.Info().Str("address", s.addr).Msg("HTTP server listening")
		s.healthHandler.SetReady(true)
		close(s.ready)

		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, errors.CodeUnavailable, "server error")
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		s.healthHandler.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
		defer cancel()

		s.logger.Info().Msg("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Ready is closed once the listener is bound and the server accepts
// traffic.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr reports the bound listen address. Useful when the configured
// address carries port zero.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
