package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// config holds internal HTTP server configuration
type config struct {
	addr string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// Server is the liveness HTTP surface. It serves health checks only; all
// real work arrives over the bus.
type Server struct {
	*http.Server
}

// NewServer creates the HTTP server
func NewServer(ctx context.Context, opts ...Option) *Server {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)

	return &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}
