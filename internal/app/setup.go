// Package app wires the catalog manager service together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/gocommerce-admin/internal/config"
	"github.com/abgdnv/gocommerce-admin/internal/manager"
	"github.com/abgdnv/gocommerce-admin/internal/metrics"
	"github.com/abgdnv/gocommerce-admin/internal/store"
	grpcImpl "github.com/abgdnv/gocommerce-admin/internal/transport/grpc"
	"github.com/abgdnv/gocommerce-admin/internal/transport/rest"
	"github.com/abgdnv/gocommerce-admin/pkg/auth"
	"github.com/abgdnv/gocommerce-admin/pkg/bootstrap"
	"github.com/abgdnv/gocommerce-admin/pkg/messaging"
	"github.com/abgdnv/gocommerce-admin/pkg/server"
	"github.com/abgdnv/gocommerce-admin/pkg/web"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
)

type Dependencies struct {
	Store       store.Store
	Registry    *manager.Registry
	Metrics     *metrics.Metrics
	Health      *grpcImpl.HealthProbe
	Identity    func(http.Handler) http.Handler
	MetricsPath string
	Logger      *slog.Logger
}

// SetupDependencies builds the session registry over backend. backend is wrapped with retries and a circuit breaker.
func SetupDependencies(backend store.Store, publisher messaging.Publisher, identity func(http.Handler) http.Handler, cfg *config.Config, logger *slog.Logger) *Dependencies {
	m := metrics.New()
	resilient := store.NewResilient(backend, cfg.Resilience, logger)

	registry := manager.NewRegistry(manager.RegistryConfig{
		Store:     resilient,
		Publisher: publisher,
		Metrics:   m,
		Logger:    logger,
		Role:      cfg.Admin.Role,
		Routes: manager.Routes{
			Fallback: cfg.Admin.FallbackRoute,
			Add:      cfg.Admin.AddRoute,
			Edit:     cfg.Admin.EditRoute,
		},
		TTL: cfg.Admin.SessionTTL,
	})

	deps := &Dependencies{
		Store:    resilient,
		Registry: registry,
		Metrics:  m,
		Health:   grpcImpl.NewHealthProbe(resilient, cfg.GRPC.HealthInterval, logger),
		Identity: identity,
		Logger:   logger,
	}
	if cfg.Metrics.Enabled {
		deps.MetricsPath = cfg.Metrics.Path
	}
	return deps
}

// OpenStore connects the backend selected by cfg.Store.Driver. The returned func releases it.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		if cfg.Database.Migrate {
			if err := store.Migrate(cfg.Database.URL); err != nil {
				return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.Info("Database migrations applied")
		}
		dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		logger.Info("Successfully connected to the database!")
		return store.NewPgStore(dbPool), dbPool.Close, nil
	case config.StoreDriverMemory:
		var seed store.Seed
		if cfg.Store.SeedFile != "" {
			var err error
			if seed, err = store.LoadSeedFile(cfg.Store.SeedFile); err != nil {
				return nil, nil, fmt.Errorf("failed to load seed: %w", err)
			}
		}
		mem, err := store.NewInMemoryStore(seed)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		logger.Info("Using in-memory store", "products", len(seed.Products), "users", len(seed.Users))
		return mem, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %q", cfg.Store.Driver)
	}
}

// SetupIdentity returns the middleware that puts the operator ID into the request context.
func SetupIdentity(ctx context.Context, cfg *config.Config, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	switch cfg.Identity.Mode {
	case config.IdentityModeHeader:
		return web.HeaderIdentity, nil
	case config.IdentityModeJWT:
		verifier, err := auth.NewJWTVerifier(ctx, cfg.IdP)
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT verifier: %w", err)
		}
		return auth.Identity(verifier, logger), nil
	default:
		return nil, fmt.Errorf("unsupported identity mode: %q", cfg.Identity.Mode)
	}
}

// SetupHttpHandler builds the router with middleware and every route of the service.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	var extra []func(http.Handler) http.Handler
	if deps.Identity != nil {
		extra = append(extra, deps.Identity)
	}
	mux := server.NewChiRouter(deps.Logger, extra...)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the catalog manager.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.Registry, deps.Logger)
	handler.RegisterRoutes(mux)
	if deps.MetricsPath != "" {
		mux.Method(http.MethodGet, deps.MetricsPath, deps.Metrics.Handler())
	}
}

// SetupHttpServer creates and configures the HTTP server. Requests are traced with otelhttp.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	handler := otelhttp.NewHandler(SetupHttpHandler(deps), "admin-http")

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, handler)
}

// SetupGrpcServer creates the gRPC server exposing the health service.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) *grpc.Server {
	return server.NewGRPCServer(reflectionEnabled, deps.Health.Register)
}
