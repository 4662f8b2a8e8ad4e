// Package server serves a live preview of the draft CV and a small JSON API
// for editing and exporting it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/alnah/go-cvbuilder"
	"github.com/alnah/go-cvbuilder/internal/state"
)

// DefaultAddr is the listen address when none is configured. The preview
// is local only.
const DefaultAddr = "127.0.0.1:8088"

// MaxBodySize bounds request bodies. Documents carry inline photos.
const MaxBodySize = 8 << 20

const shutdownTimeout = 5 * time.Second

// Builder is the part of cvbuilder.Builder the server uses.
type Builder interface {
	Render(ctx context.Context, doc cvbuilder.Document) (string, error)
	Export(ctx context.Context, doc cvbuilder.Document, kind cvbuilder.ExportKind) (*cvbuilder.ExportResult, error)
	Templates() ([]string, error)
	HasTemplate(key string) bool
}

var _ Builder = (*cvbuilder.Builder)(nil)

// Config holds the server configuration.
type Config struct {
	Addr   string
	Logger *slog.Logger
}

// Server is the preview HTTP server.
type Server struct {
	Router  *chi.Mux
	builder Builder
	store   *state.Store
	config  Config
	logger  *slog.Logger
}

// New creates a Server rendering with b and editing store.
func New(cfg Config, b Builder, store *state.Store) (*Server, error) {
	if b == nil {
		return nil, errors.New("builder must not be nil")
	}
	if store == nil {
		return nil, errors.New("state store must not be nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	srv := &Server{
		Router:  chi.NewRouter(),
		builder: b,
		store:   store,
		config:  cfg,
		logger:  logger,
	}

	srv.Router.Use(middleware.Recoverer)
	srv.Router.Use(srv.logRequests)

	srv.Router.Get("/", srv.handlePreview)
	srv.Router.Route("/api", func(r chi.Router) {
		r.Get("/health", srv.handleHealth)
		r.Get("/templates", srv.handleTemplates)
		r.Post("/render", srv.handleRender)
		r.Get("/draft", srv.handleGetDraft)
		r.Put("/draft", srv.handlePutDraft)
		r.Delete("/draft", srv.handleDeleteDraft)
		r.Post("/export/{kind}", srv.handleExport)
	})

	return srv, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.config.Addr
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	hs := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("listening on %s: %w", s.config.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// logRequests logs one line per request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
