// Package server exposes ranking and band classification over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fortify-index/mfi/internal/contract"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Timeouts of the HTTP server.
const (
	readHeaderTimeout = 10 * time.Second
	requestTimeout    = 60 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server serves ranked MFI data. Every request computes its result from scratch.
type Server struct {
	cfg     *contract.Config
	src     contract.Source
	history contract.HistoryStore
	logger  *zap.Logger
}

// New creates a server reading cycles from src. history may be nil.
func New(cfg *contract.Config, src contract.Source, history contract.HistoryStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.L()
	}
	return &Server{cfg: cfg, src: src, history: history, logger: logger.Named("server")}
}

// Handler builds the HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/rank", s.handleRank)
		r.Post("/bands", s.handleBands)
		r.Get("/cycles/{cycle}/ranking", s.handleCycleRanking)
	})
	return r
}

// Run listens on cfg.ListenAddr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", srv.Addr), zap.String("source", s.src.Name()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "shutdown")
		}
		return nil
	})
	return g.Wait()
}
