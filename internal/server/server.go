// Package server exposes the TOC transformation over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/open-cli-collective/htmltoc/internal/transform"
)

// DefaultMaxBodyBytes limits the size of an uploaded document.
const DefaultMaxBodyBytes = 10 << 20

// Server is the HTTP API server for htmltoc.
type Server struct {
	router   chi.Router
	defaults transform.Options
	log      *slog.Logger
	maxBody  int64
}

// New creates and configures the HTTP server. defaults apply to every
// request unless overridden by query parameters.
func New(defaults transform.Options, log *slog.Logger) *Server {
	s := &Server{
		defaults: defaults,
		log:      log,
		maxBody:  DefaultMaxBodyBytes,
	}
	s.setupRoutes()
	return s
}

// SetMaxBodyBytes changes the request size limit.
func (s *Server) SetMaxBodyBytes(n int64) {
	s.maxBody = n
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/xhtml+xml", "application/xml", "text/xml",
			"text/html", "text/markdown", "text/plain", "application/octet-stream"))
		r.Post("/toc", s.handleTOC)
		r.Post("/outline", s.handleOutline)
	})

	s.router = r
}
