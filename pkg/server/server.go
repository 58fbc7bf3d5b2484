// Package server is the HTTP front-end of chartdeck.
//
// Each browser gets its own [session.Controller], found through the
// chartdeck_session cookie. The page at / shows the amount input, the current
// charts and the progress of a running action. Generating and exporting are
// plain form posts, so the page works without scripts:
//
//	GET  /                 page
//	POST /generate         render amount charts (form value "amount")
//	GET  /status           progress as JSON
//	GET  /charts/{id}.svg  vector output of one chart
//	POST /export           download alle-grafieken.docx
//
// Conversions are cached across sessions in a shared [cache.Cache].
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/chartdeck/pkg/batch"
	"github.com/matzehuels/chartdeck/pkg/cache"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/pipeline"
	"github.com/matzehuels/chartdeck/pkg/raster"
	"github.com/matzehuels/chartdeck/pkg/session"
	"github.com/matzehuels/chartdeck/pkg/surface"
)

const (
	// DefaultAddr is the listen address of `chartdeck serve`.
	DefaultAddr = ":8080"

	// CookieName holds the session ID.
	CookieName = "chartdeck_session"

	cleanupInterval = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Server serves the chartdeck page and its actions.
type Server struct {
	store       session.Store
	cache       cache.Cache
	snapshotter raster.Snapshotter
	pacer       batch.Pacer
	opts        pipeline.Options
	logger      *log.Logger
	router      chi.Router

	// ctx bounds background batches; Serve replaces it with its own.
	ctx context.Context
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets the session store. Defaults to a MemoryStore.
func WithStore(s session.Store) Option {
	return func(srv *Server) { srv.store = s }
}

// WithCache sets the conversion cache shared by all sessions.
func WithCache(c cache.Cache) Option {
	return func(srv *Server) { srv.cache = c }
}

// WithSnapshotter fixes the raster backend instead of picking it per export.
func WithSnapshotter(s raster.Snapshotter) Option {
	return func(srv *Server) { srv.snapshotter = s }
}

// WithPacer overrides the pause between charts.
func WithPacer(p batch.Pacer) Option {
	return func(srv *Server) { srv.pacer = p }
}

// WithOptions sets the pipeline options every session starts from.
func WithOptions(o pipeline.Options) Option {
	return func(srv *Server) { srv.opts = o }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(srv *Server) { srv.logger = l }
}

// ValidateOptions checks the options every session starts from, so a bad
// configuration fails at startup instead of on the first request.
func ValidateOptions(o pipeline.Options) error {
	o.Count = pipeline.MinAmount
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	return o.ValidateForExport()
}

// New creates a server.
func New(opts ...Option) *Server {
	s := &Server{ctx: context.Background()}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = session.NewMemoryStore(session.DefaultTTL)
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(s.withSession)

	r.Get("/", s.handlePage)
	r.Get("/status", s.handleStatus)
	r.Get("/charts/{id}.svg", s.handleChart)
	r.Post("/generate", s.handleGenerate)
	r.Post("/export", s.handleExport)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.ctx = ctx
	go s.janitor(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(errors.ErrCodeInternal, err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return nil
}

func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep drops idle sessions and, for caches that keep expired entries
// around, the expired conversions.
func (s *Server) sweep(ctx context.Context) {
	if n, err := s.store.Cleanup(ctx); err != nil {
		s.logger.Warn("session cleanup failed", "err", err)
	} else if n > 0 {
		s.logger.Debug("expired sessions removed", "count", n)
	}
	if c, ok := s.cache.(interface{ Cleanup() int }); ok {
		if n := c.Cleanup(); n > 0 {
			s.logger.Debug("expired conversions removed", "count", n)
		}
	}
}

// newController builds a controller with its own surface.
func (s *Server) newController() *session.Controller {
	runner := pipeline.NewRunner(surface.NewMemory(), s.snapshotter, s.cache, s.logger)
	runner.Pacer = s.pacer
	return session.NewController(runner, session.WithOptions(s.opts))
}
