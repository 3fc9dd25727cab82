package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"storefront-catalog/internal/config"
	custommiddleware "storefront-catalog/internal/middleware"
	"storefront-catalog/internal/repository"
	"storefront-catalog/internal/service"
	"storefront-catalog/internal/storage"
	"storefront-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the long-lived resources the server is assembled from.
type Deps struct {
	DB       *sql.DB
	Redis    *redis.Client
	Store    storage.ObjectStore
	CodeHash string
	Registry *prometheus.Registry
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewDBStatsCollector(deps.DB, "catalog"),
		)
	}
	metrics := custommiddleware.NewMetrics(registry)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	// forwarding headers are client controlled unless a proxy rewrites them,
	// and the login limiter keys on RemoteAddr
	if cfg.Server.TrustProxy {
		router.Use(middleware.RealIP)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(metrics.Middleware)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, !cfg.IsProduction()))

	router.Get("/health", health(deps.DB, deps.Redis))
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// Repositories
	productRepo := repository.NewProductRepository(deps.DB)
	collectionRepo := repository.NewCollectionRepository(deps.DB)
	categoryRepo := repository.NewCategoryRepository(deps.DB)
	settingRepo := repository.NewSettingRepository(deps.DB)
	sessionRepo := repository.NewSessionRepository(deps.DB)

	// Services
	productService := service.NewProductService(productRepo, categoryRepo, deps.Store, cfg.Storage.Bucket, logger)
	collectionService := service.NewCollectionService(collectionRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	settingsService := service.NewSettingsService(settingRepo)
	authService := service.NewAdminAuthService(sessionRepo, deps.CodeHash, cfg.Admin.SessionSecret, cfg.Admin.SessionTTL)

	// Handlers
	productHandler := transport.NewProductHandler(productService, logger)
	collectionHandler := transport.NewCollectionHandler(collectionService, logger)
	categoryHandler := transport.NewCategoryHandler(categoryService, logger)
	adminHandler := transport.NewAdminHandler(authService, settingsService, cfg.Admin.CookieSecure, logger)

	loginLimiter := custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.Admin.LoginRateLimit,
		Window:            cfg.Admin.LoginRateWindow,
		KeyPrefix:         "ratelimit:login",
	}, logger)
	sessionMiddleware := custommiddleware.AdminSessionMiddleware(authService, logger)

	router.Route("/api", func(r chi.Router) {
		productHandler.RegisterPublicRoutes(r)
		collectionHandler.RegisterPublicRoutes(r)
		categoryHandler.RegisterPublicRoutes(r)
		adminHandler.RegisterPublicRoutes(r)

		r.Route("/admin", func(r chi.Router) {
			adminHandler.RegisterLoginRoute(r, loginLimiter)

			r.Group(func(r chi.Router) {
				r.Use(sessionMiddleware)
				adminHandler.RegisterAdminRoutes(r)
				productHandler.RegisterAdminRoutes(r)
				collectionHandler.RegisterAdminRoutes(r)
				categoryHandler.RegisterAdminRoutes(r)
			})
		})
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     deps.DB,
		redis:  deps.Redis,
	}

	return server
}

func health(db *sql.DB, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok", "database": "up", "redis": "up"}
		code := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			status["status"], status["database"] = "degraded", "down"
			code = http.StatusServiceUnavailable
		}
		// redis only backs login rate limiting, which fails open
		if err := rdb.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
		}

		custommiddleware.RespondWithJSON(w, code, status)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
