package routes

import (
	"net/http"

	"github.com/giannis84/recipe-favourites/internal/database"
	"github.com/giannis84/recipe-favourites/internal/logging"
	"github.com/go-chi/chi/v5"
)

// RegisterHealthRoutes creates the health check endpoints and, when metricsHandler is not nil, /metrics.
func RegisterHealthRoutes(pinger database.Pinger, metricsHandler http.Handler) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := pinger.PingContext(r.Context()); err != nil {
				logging.Log(r.Context()).Layer("routes").Op("ready").Err(err).Warn("database not ready")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte("database not ready"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Ready"))
		})

		if metricsHandler != nil {
			r.Method(http.MethodGet, "/metrics", metricsHandler)
		}
	}
}
