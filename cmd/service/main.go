package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giannis84/recipe-favourites/internal"
	"github.com/giannis84/recipe-favourites/internal/config"
	"github.com/giannis84/recipe-favourites/internal/database"
	"github.com/giannis84/recipe-favourites/internal/keepalive"
	"github.com/giannis84/recipe-favourites/internal/logging"
	"github.com/giannis84/recipe-favourites/internal/metrics"
	"github.com/giannis84/recipe-favourites/internal/routes"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}

	// Initialize shared dependencies
	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("configuration loaded",
		slog.String("api_addr", cfg.APIAddr()),
		slog.String("health_addr", cfg.HealthAddr()),
		slog.String("app_env", cfg.AppEnv),
		slog.Bool("unique_favourites", cfg.UniqueFavourites),
	)

	// Connect to PostgreSQL and bring the schema up to date
	db, err := database.Connect(cfg.PostgresConnString())
	if err != nil {
		logger.Error("failed to initialise database", slog.String(logging.ErrorKey, err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.MigrateOnStart() {
		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.Migrate(migrateCtx, db, database.MigrateOptions{UniqueUserRecipe: cfg.UniqueFavourites}, logger)
		cancel()
		if err != nil {
			logger.Error("failed to migrate database", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
	}
	logger.Info("database ready")

	repo := database.NewPostgresRepository(db)
	m := metrics.New()
	healthRoutes := routes.RegisterHealthRoutes(db, m.Handler())

	// Create favourites and, when configured, health check http services
	apiRoutes := []internal.RoutesRegistry{routes.RegisterFavouritesRoutes(repo)}
	if cfg.HealthAddr() == "" {
		apiRoutes = append(apiRoutes, healthRoutes)
	}
	apiService := internal.NewService(internal.ServiceConfig{
		Addr:         cfg.APIAddr(),
		Logger:       logger,
		Routes:       apiRoutes,
		Middlewares:  []func(http.Handler) http.Handler{internal.CORS(cfg.CORSAllowedOrigins), m.Middleware},
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})

	services := []*internal.Service{apiService}
	names := []string{"favourites api"}
	if cfg.HealthAddr() != "" {
		services = append(services, internal.NewService(internal.ServiceConfig{
			Addr:   cfg.HealthAddr(),
			Logger: logger,
			Routes: []internal.RoutesRegistry{healthRoutes},
		}))
		names = append(names, "health check api")
	}

	// Start http service threads
	for i, svc := range services {
		go func(svc *internal.Service, name string) {
			if err := svc.ListenAndServeWrapper(name); err != nil && err != http.ErrServerClosed {
				logger.Error("http service failed", slog.String("service", name), slog.String(logging.ErrorKey, err.Error()))
				os.Exit(1)
			}
		}(svc, names[i])
	}

	// Keep-alive job, production only
	var scheduler *keepalive.Scheduler
	if cfg.KeepAliveEnabled() {
		scheduler, err = keepalive.Start(cfg.KeepAliveSchedule, &keepalive.Pinger{
			URL:      cfg.KeepAliveURL,
			Logger:   logger,
			Recorder: m,
		})
		if err != nil {
			logger.Error("failed to start keep-alive job", slog.String(logging.ErrorKey, err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Info("keep-alive job disabled", slog.String("app_env", cfg.AppEnv))
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	// Shutdown gracefully
	logger.Info("shutting down service", slog.String("signal", receivedSignal.String()))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("keep-alive shutdown error", slog.String(logging.ErrorKey, err.Error()))
		}
	}
	for i, svc := range services {
		if err := svc.HTTPServer.Shutdown(ctx); err != nil {
			logger.Error("http service shutdown error", slog.String("service", names[i]), slog.String(logging.ErrorKey, err.Error()))
		}
	}
	logger.Info("exiting...")
}
