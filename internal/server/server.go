package server

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nao1215/crawlzip/internal/model"
)

//go:embed templates/index.html
var templateFS embed.FS

// readHeaderTimeout bounds how long a client may take to send headers.
// Crawl requests themselves are not bounded.
const readHeaderTimeout = 10 * time.Second

// Runner executes a crawl job. The job must end with an archive when
// Execute returns nil. *pipeline.Pipeline implements it.
type Runner interface {
	Execute(ctx context.Context, job *model.Job) error
}

// Server serves the crawl form and the crawl endpoint.
// Requests share no mutable state; each crawl has its own job.
type Server struct {
	runner      Runner
	credentials Credentials
	logger      *slog.Logger
	now         func() time.Time
	form        *template.Template

	defaultDepth    int
	defaultMaxPages int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock sets the time source of the health endpoint.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaults sets the depth and page limit used when the form omits them.
func WithDefaults(depth, maxPages int) Option {
	return func(s *Server) {
		s.defaultDepth = depth
		s.defaultMaxPages = maxPages
	}
}

// New creates a Server.
func New(runner Runner, credentials Credentials, opts ...Option) *Server {
	s := &Server{
		runner:          runner,
		credentials:     credentials,
		now:             time.Now,
		form:            template.Must(template.ParseFS(templateFS, "templates/index.html")),
		defaultDepth:    model.DefaultDepth,
		defaultMaxPages: model.DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleForm)
		r.Post("/crawl", s.handleCrawl)
	})

	return r
}

// HTTPServer returns an http.Server serving Handler on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
