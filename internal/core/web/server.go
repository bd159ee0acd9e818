package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/seckatie/clipd/internal/core"
	"github.com/seckatie/clipd/internal/core/db"
	"github.com/seckatie/clipd/internal/core/export"
	"github.com/seckatie/clipd/internal/logger"
)

// TagCounter produces the tag frequency list. *db.DB satisfies it, as does
// the Redis-backed cache.
type TagCounter interface {
	TagCounts(ctx context.Context) ([]core.TagCount, error)
}

// Options configures a Server. Zero values select defaults.
type Options struct {
	Logger logger.Logger
	// Tags overrides where tag counts come from; defaults to the database.
	Tags TagCounter
	// Renderer converts the export document to PDF. Nil disables PDF export.
	Renderer    export.Renderer
	MaxPerPage  int
	CORSOrigins []string
	// Now is the clock used for export timestamps.
	Now func() time.Time
}

type Server struct {
	db          *db.DB
	tags        TagCounter
	renderer    export.Renderer
	logger      logger.Logger
	maxPerPage  int
	corsOrigins []string
	now         func() time.Time
	started     time.Time
	router      chi.Router
	http        *http.Server
}

// NewServer builds the router and the underlying http.Server listening on addr.
func NewServer(addr string, database *db.DB, opts Options) *Server {
	ws := &Server{
		db:          database,
		tags:        opts.Tags,
		renderer:    opts.Renderer,
		logger:      opts.Logger,
		maxPerPage:  opts.MaxPerPage,
		corsOrigins: opts.CORSOrigins,
		now:         opts.Now,
	}
	if ws.tags == nil {
		ws.tags = database
	}
	if ws.logger == nil {
		ws.logger = logger.Nop()
	}
	if ws.maxPerPage <= 0 {
		ws.maxPerPage = core.MaxPerPage
	}
	if len(ws.corsOrigins) == 0 {
		ws.corsOrigins = []string{"*"}
	}
	if ws.now == nil {
		ws.now = time.Now
	}
	ws.started = ws.now()

	ws.router = ws.routes()
	ws.http = &http.Server{
		Addr:              addr,
		Handler:           ws.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return ws
}

func (ws *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logRequests(ws.logger))
	r.Use(cors(ws.corsOrigins))

	r.Get("/healthz", ws.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/clips", func(r chi.Router) {
			r.Get("/", ws.listClips)
			r.Post("/", ws.createClip)
			r.Get("/{id}", ws.getClip)
			r.Put("/{id}", ws.updateClip)
			r.Delete("/{id}", ws.deleteClip)
		})
		r.Get("/tags", ws.listTags)
		r.Get("/export", ws.exportJSON)
		r.Get("/export/csv", ws.exportCSV)
		r.Get("/export/pdf", ws.exportPDF)
	})

	return r
}

// Handler returns the root HTTP handler.
func (ws *Server) Handler() http.Handler {
	return ws.router
}

// Addr returns the configured listen address.
func (ws *Server) Addr() string {
	return ws.http.Addr
}

// Start runs the HTTP server (blocks until error or shutdown).
func (ws *Server) Start() error {
	ws.logger.Info("HTTP server listening", logger.String("addr", ws.http.Addr))
	err := ws.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (ws *Server) Stop(ctx context.Context) error {
	ws.logger.Info("HTTP server shutting down")
	return ws.http.Shutdown(ctx)
}
