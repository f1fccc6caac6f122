// Package server is a development fiddle server answering the editor's
// run, save, favourite, draft and library requests.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dshills/shellpad/internal/action"
	"github.com/dshills/shellpad/internal/logging"
)

// Config holds server configuration.
type Config struct {
	Listen string

	// TitleLimit is the longest accepted title; zero disables the check.
	TitleLimit int

	// Endpoints are the paths routed to each handler.
	Endpoints action.Endpoints

	// RequestTimeout bounds every request.
	RequestTimeout time.Duration

	// DraftUser owns drafts; the server has no login.
	DraftUser string
}

// DefaultConfig returns a server config matching the editor defaults.
func DefaultConfig() Config {
	return Config{
		Listen:         "127.0.0.1:8080",
		TitleLimit:     255,
		Endpoints:      action.DefaultSettings().Endpoints,
		RequestTimeout: 30 * time.Second,
		DraftUser:      "anonymous",
	}
}

// Server serves the fiddle endpoints.
type Server struct {
	cfg        Config
	store      *Store
	logger     *logging.Logger
	router     chi.Router
	httpServer *http.Server
}

// New creates a server backed by store.
func New(cfg Config, store *Store, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Null()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger.WithComponent("server"),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"status":"ok"}`)
	})

	ep := s.cfg.Endpoints
	r.Post(ep.Run, s.handleRun)
	r.Post(ep.Save, s.handleSave)
	r.Post(ep.Favourite, s.handleFavourite)
	r.Get(ep.Draft, s.handleDraft)
	r.Get(ep.LibraryVersions, s.handleLibraryVersions)
	r.Get(ep.Dependencies, s.handleDependencies)
	r.Get("/{slug}/", s.handleShow)
	r.Get("/{slug}/{version}/", s.handleShow)
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Store returns the backing store.
func (s *Server) Store() *Store { return s.store }

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Info("listening on %s", s.cfg.Listen)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithField("request_id", middleware.GetReqID(r.Context())).
			Debug("%s %s %d %dB %s", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}
