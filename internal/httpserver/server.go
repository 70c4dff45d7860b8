package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerConfig holds the parameters NewServer needs, decoupled from the
// top-level config struct so this package stays free of an import cycle.
type ServerConfig struct {
	CORSAllowedOrigins []string
}

// Server wraps the chi router with the global middleware stack; the
// id-builder API routes are mounted onto Router by the caller (see
// internal/api.API.Mount) after construction.
type Server struct {
	Router    *chi.Mux
	Logger    *slog.Logger
	Metrics   *prometheus.Registry
	startedAt time.Time
}

// NewServer creates an HTTP server with the global middleware stack and the
// unauthenticated /metrics endpoint wired in. Health and readiness are
// registered by the caller via internal/api.API.Mount, since they depend on
// the storage backend rather than anything this package knows about.
func NewServer(cfg ServerConfig, logger *slog.Logger, metricsReg *prometheus.Registry) *Server {
	s := &Server{
		Router:    chi.NewRouter(),
		Logger:    logger,
		Metrics:   metricsReg,
		startedAt: time.Now(),
	}

	s.Router.Use(RequestID)
	s.Router.Use(Logger(logger))
	s.Router.Use(Metrics)
	s.Router.Use(middleware.Recoverer)
	s.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.Router.Handle("/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startedAt)
}
