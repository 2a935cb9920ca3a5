// Package server exposes headless scenes over HTTP.
//
// Each session owns one scene driven by a virtual clock: after every
// mutating request the scene is stepped until its layout has converged and
// its viewport has settled, so responses always describe a settled view.
//
//	POST   /sessions                  create a session from a graph
//	GET    /sessions/{id}             settled snapshot
//	DELETE /sessions/{id}             close a session
//	GET    /sessions/{id}/elements    visible set and LOD radius
//	GET    /sessions/{id}/labels      labels shown at the current zoom
//	GET    /sessions/{id}/graph       graph with current positions
//	POST   /sessions/{id}/viewport    set translate and/or scale
//	POST   /sessions/{id}/fit         fit every node
//	POST   /sessions/{id}/zoom        fit a set of nodes
//	POST   /sessions/{id}/pointer     hit-test or click a screen point
//	GET    /healthz, /version, /metrics
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/graphscope/internal/metrics"
	"github.com/matzehuels/graphscope/pkg/config"
	"github.com/matzehuels/graphscope/pkg/layout"
)

// maxFrames bounds how long a request may step a scene towards a settled
// view.
const maxFrames = 1200

// Options configures a Server.
type Options struct {
	Config   *config.Config
	Registry *layout.Registry
	// Metrics serves /metrics when set.
	Metrics *metrics.Collector
	Logger  *log.Logger
}

// Server is the HTTP inspection API.
type Server struct {
	cfg      *config.Config
	registry *layout.Registry
	metrics  *metrics.Collector
	logger   *log.Logger
	store    *Store
	router   chi.Router
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Registry == nil {
		opts.Registry = layout.NewDefaultRegistry(layout.GraphvizOptions{Logger: opts.Logger})
	}
	s := &Server{
		cfg:      opts.Config,
		registry: opts.Registry,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		store:    NewStore(time.Duration(opts.Config.Server.SessionTTL), opts.Config.Server.MaxSessions),
	}
	if s.metrics != nil {
		s.store.onChange = s.metrics.SetSessions
	}
	s.router = s.routes()
	return s
}

// Store returns the session store.
func (s *Server) Store() *Store { return s.store }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.withSession(s.handleSnapshot))
			r.Delete("/", s.handleDelete)
			r.Get("/elements", s.withSession(s.handleElements))
			r.Get("/labels", s.withSession(s.handleLabels))
			r.Get("/graph", s.withSession(s.handleGraph))
			r.Post("/viewport", s.withSession(s.handleViewport))
			r.Post("/fit", s.withSession(s.handleFit))
			r.Post("/zoom", s.withSession(s.handleZoom))
			r.Post("/pointer", s.withSession(s.handlePointer))
		})
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully and
// closes every session.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving inspection API", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.store.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down inspection API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.store.Close()
	return err
}

// Janitor expires idle sessions every interval until ctx is cancelled.
func (s *Server) Janitor(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if n := s.store.Cleanup(); n > 0 {
				s.logger.Debug("expired sessions", "count", n, "open", s.store.Len())
			}
		}
	}
}
