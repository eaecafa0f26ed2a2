package internal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/giannis84/recipe-favourites/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RoutesRegistry is a function that registers routes on a chi.Router
type RoutesRegistry func(r chi.Router)

// ServiceConfig configures a Service. Zero timeouts fall back to the defaults below.
type ServiceConfig struct {
	Addr   string
	Logger *slog.Logger
	Routes []RoutesRegistry

	// Middlewares run after the common chain (request id, logging, recovery) and before routing.
	Middlewares []func(http.Handler) http.Handler

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Service wraps an HTTP server with its router
type Service struct {
	Logger     *slog.Logger
	HTTPServer *http.Server
	Router     *chi.Mux
}

const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// NewService sets up the router and HTTP server.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	// Initialize common middleware
	router.Use(middleware.RequestID)
	router.Use(logging.RequestLogger(logger))
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	for _, mw := range cfg.Middlewares {
		router.Use(mw)
	}

	// Register routes
	for _, routes := range cfg.Routes {
		if routes != nil {
			routes(router)
		}
	}

	return &Service{
		Logger: logger,
		Router: router,
		HTTPServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  durationOr(cfg.ReadTimeout, defaultReadTimeout),
			WriteTimeout: durationOr(cfg.WriteTimeout, defaultWriteTimeout),
			IdleTimeout:  durationOr(cfg.IdleTimeout, defaultIdleTimeout),
		},
	}
}

// CORS allows the given origins ("*" for any) to call the API from browsers.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	})
}

// ListenAndServeWrapper starts the http service
func (s *Service) ListenAndServeWrapper(service string) error {
	s.Logger.Info("starting http service", slog.String("service", service), slog.String("port", s.HTTPServer.Addr))
	return s.HTTPServer.ListenAndServe()
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d == 0 {
		return fallback
	}
	return d
}
