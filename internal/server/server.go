// Package server implements the sineshade HTTP API.
//
// # Routes
//
//	GET  /healthz                 liveness probe, responds "ok"
//	GET  /api/v1/config           default render options as JSON
//	POST /api/v1/render           transform an uploaded image
//	GET  /api/v1/artifacts/{id}   fetch a previously rendered artifact
//
// The render endpoint accepts either a multipart form with the image in the
// "image" field or the raw image bytes as the request body. Shading and
// output parameters are read from form values or the query string using the
// same names as the configuration file (lines, width, sample_freq, ...).
//
// Every rendered artifact is stored under a fresh ID returned in the
// X-Artifact-ID header, so a client can link to it without uploading the
// image again. Artifacts expire after [cache.UploadTTL].
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sineshade/pkg/cache"
	"github.com/matzehuels/sineshade/pkg/pipeline"
)

// Server timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// DefaultMaxUploadBytes limits request bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 16 << 20

// Options configures a Server.
type Options struct {
	// Defaults are applied before request parameters.
	Defaults pipeline.Options

	// MaxUploadBytes limits the request body size.
	MaxUploadBytes int64

	Logger *log.Logger
}

// Server serves the HTTP API on top of a pipeline runner.
type Server struct {
	runner    *pipeline.Runner
	defaults  pipeline.Options
	maxUpload int64
	logger    *log.Logger
	router    chi.Router
}

// New creates a server. The runner's cache also stores artifacts addressed
// by ID; with a null cache those lookups always miss.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		runner:    runner,
		defaults:  opts.Defaults,
		maxUpload: opts.MaxUploadBytes,
		logger:    opts.Logger,
	}
	s.defaults.SetRenderDefaults()
	s.defaults.Logger = opts.Logger
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", s.handleConfig)
		r.With(middleware.RequestSize(s.maxUpload)).Post("/render", s.handleRender)
		r.Get("/artifacts/{id}", s.handleArtifact)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// storeArtifact saves data under a new ID.
func (s *Server) storeArtifact(ctx context.Context, id, format string, data []byte) error {
	key := s.runner.Keyer.UploadKey(id)
	return s.runner.Cache.Set(ctx, key, encodeArtifact(format, data), cache.UploadTTL)
}

// loadArtifact returns the format and bytes stored under id.
func (s *Server) loadArtifact(ctx context.Context, id string) (string, []byte, bool, error) {
	raw, ok, err := s.runner.Cache.Get(ctx, s.runner.Keyer.UploadKey(id))
	if err != nil || !ok {
		return "", nil, false, err
	}
	format, data, ok := decodeArtifact(raw)
	return format, data, ok, nil
}
