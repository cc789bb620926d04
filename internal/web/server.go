// Package web provides the HTTP API and upload page for fastaframes.
package web

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/fastaframes/internal/config"
	"github.com/JonMunkholm/fastaframes/internal/core"
	"github.com/JonMunkholm/fastaframes/internal/metrics"
	"github.com/JonMunkholm/fastaframes/internal/store"
	appmw "github.com/JonMunkholm/fastaframes/internal/web/middleware"
)

// BatchStore persists converted tables. *store.Store implements it.
type BatchStore interface {
	SaveEntries(ctx context.Context, entries []core.Entry) (string, error)
	LoadEntries(ctx context.Context, batchID string) ([]core.Entry, error)
	ListBatches(ctx context.Context) ([]store.Batch, error)
	DeleteBatch(ctx context.Context, batchID string) error
}

// Server is the fastaframes HTTP server.
type Server struct {
	service *core.Service
	cfg     *config.Config
	store   BatchStore
	metrics *metrics.Metrics
	limiter *ConversionLimiter
	router  *chi.Mux
	server  *http.Server
}

// ServerOption configures optional collaborators.
type ServerOption func(*Server)

// WithStore enables the batch routes.
func WithStore(st BatchStore) ServerOption {
	return func(s *Server) {
		s.store = st
	}
}

// WithMetrics records conversions and serves /metrics.
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a Server. Without WithStore the batch routes answer
// 503.
func NewServer(service *core.Service, cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		limiter: NewConversionLimiter(cfg.Fasta.MaxConcurrent, cfg.Fasta.MaxWaitTime),
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
	s.router.Use(maxBody(s.cfg.Fasta.MaxUploadSize))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.With(s.limiter.Middleware).Post("/preview", s.handlePreview)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/columns", s.handleColumns)
		r.Get("/batches", s.handleListBatches)
		r.Delete("/batches/{batchID}", s.handleDeleteBatch)

		r.Group(func(r chi.Router) {
			r.Use(s.limiter.Middleware)
			r.Post("/table", s.handleToTable)
			r.Post("/fasta", s.handleToFasta)
			r.Post("/batches", s.handleSaveBatch)
			r.Get("/batches/{batchID}/fasta", s.handleBatchFasta)
			r.Get("/batches/{batchID}/table", s.handleBatchTable)
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for running conversions.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	if n := s.limiter.Active(); n > 0 {
		slog.Info("waiting for conversions to finish", "active", n)
	}
	return s.limiter.Drain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// maxBody caps request bodies at limit bytes.
func maxBody(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && limit > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
