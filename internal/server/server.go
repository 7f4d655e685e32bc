// Package server wires configuration, storage and handlers into an
// http.Handler.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/brntsllvn/devlunch/internal/config"
	"github.com/brntsllvn/devlunch/internal/handlers"
	"github.com/brntsllvn/devlunch/internal/middleware"
	"github.com/brntsllvn/devlunch/internal/repository"
	"github.com/brntsllvn/devlunch/internal/repository/memory"
	"github.com/brntsllvn/devlunch/internal/repository/sqlite"
	"github.com/brntsllvn/devlunch/internal/validation"
	"github.com/brntsllvn/devlunch/internal/views"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is a repository.Store that can also report its health
type Store interface {
	repository.Store
	Ping(ctx context.Context) error
}

// OpenStore opens the configured store. SQLite databases are migrated
// before they are returned.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(logger), nil
	case config.DriverSQLite:
		store, err := sqlite.New(ctx, SQLiteConfig(cfg), logger)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// SQLiteConfig converts application settings to sqlite store settings
func SQLiteConfig(cfg config.DatabaseConfig) sqlite.Config {
	return sqlite.Config{
		Path:         cfg.Path,
		MaxOpenConns: cfg.MaxOpenConns,
		BusyTimeout:  time.Duration(cfg.BusyTimeoutMS) * time.Millisecond,
	}
}

// Options are the collaborators of the router
type Options struct {
	Config    *config.Config
	Store     Store
	Renderer  views.Renderer
	Validator *validation.Validator
	Registry  *prometheus.Registry
	Version   string
	Logger    *slog.Logger
}

// NewRouter builds the chi router with middleware and routes
func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	metrics, err := middleware.NewMetrics(opts.Registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(metrics.Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(opts.Store, opts.Version, log)
	restaurantHandler := handlers.NewRestaurantHandler(opts.Store, opts.Validator, opts.Renderer, log)

	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, handlers.IndexPath, http.StatusFound)
	})

	r.Route(handlers.IndexPath, func(r chi.Router) {
		restaurantHandler.Mount(r, middleware.APIKeyAuth(opts.Config.Auth.APIKeys, log))
	})

	return r, nil
}
