package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ativus/ativus/application/port/inbound"
	"github.com/ativus/ativus/application/port/outbound"
	"github.com/ativus/ativus/application/usecase"
	"github.com/ativus/ativus/infrastructure/adapter/postgres"
	"github.com/ativus/ativus/infrastructure/config"
	"github.com/ativus/ativus/infrastructure/http/handler"
	"github.com/ativus/ativus/infrastructure/http/middleware"
	"github.com/ativus/ativus/infrastructure/http/sse"
	"github.com/ativus/ativus/infrastructure/metrics"
	"github.com/ativus/ativus/infrastructure/service/cache"
	"github.com/ativus/ativus/infrastructure/service/jwt"
	"github.com/ativus/ativus/infrastructure/service/logger"
	"github.com/ativus/ativus/infrastructure/service/ratelimit"
	"github.com/ativus/ativus/infrastructure/service/workorder"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "ativus",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	// Connect to database
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, map[string]interface{}{})
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", map[string]interface{}{})

	// Rate limiting (Redis-backed or noop based on config)
	var rateLimitService inbound.RateLimitService
	{
		rlLogger := logrus.New()
		rs, err := ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
			Enabled:  cfg.RateLimitEnabled,
			RedisURL: cfg.RedisURL,
		}, rlLogger)
		if err != nil {
			structuredLogger.Error(ctx, "Failed to initialize rate limit service", err, map[string]interface{}{
				"redis_url": cfg.RedisURL,
			})
		} else {
			rateLimitService = rs
		}
	}

	// Dashboard cache. Optional: a missing Redis degrades to direct queries.
	var dashboardCache outbound.Cache
	redisCache, err := cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		structuredLogger.Warn(ctx, "Redis cache unavailable, dashboard will query directly", map[string]interface{}{
			"redis_url": cfg.RedisURL,
		})
	} else {
		dashboardCache = redisCache
	}

	// Repositories
	lifecycleStore := postgres.NewLifecycleStoreAdapter(db)
	assetRepo := postgres.NewAssetRepositoryAdapter(db)
	auditRepo := postgres.NewAuditRepositoryAdapter(db)
	holderRepo := postgres.NewHolderRepositoryAdapter(db)
	maintenanceRepo := postgres.NewMaintenanceRepositoryAdapter(db)

	// Services
	tokenService, err := jwt.NewJWTService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	workOrderResolver := workorder.NewHTTPResolver(cfg.WorkOrderBaseURL, cfg.WorkOrderTimeout, structuredLogger)

	// Metrics
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(prometheus.DefaultRegisterer)
	}

	// Live audit feed
	streamer := sse.NewStreamer()

	// Use cases
	lifecycleUseCase := usecase.NewLifecycleUseCase(lifecycleStore, assetRepo, holderRepo, maintenanceRepo, structuredLogger).
		WithPublisher(streamer)
	maintenanceUseCase := usecase.NewMaintenanceUseCase(maintenanceRepo, structuredLogger)
	historyUseCase := usecase.NewHistoryUseCase(auditRepo, lifecycleStore, holderRepo, workOrderResolver, structuredLogger)
	dashboardUseCase := usecase.NewDashboardUseCase(assetRepo, dashboardCache, cfg.DashboardCacheTTL, structuredLogger)
	directoryUseCase := usecase.NewDirectoryUseCase(holderRepo, structuredLogger)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimitService, structuredLogger, cfg.RateLimitRequests, cfg.RateLimitWindow)

	// Handlers
	assetHandler := handler.NewAssetHandler(lifecycleUseCase, m)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceUseCase)
	historyHandler := handler.NewHistoryHandler(historyUseCase, m)
	holderHandler := handler.NewHolderHandler(directoryUseCase)
	dashboardHandler := handler.NewDashboardHandler(dashboardUseCase)
	var healthHandler *handler.HealthHandler
	if redisCache != nil {
		healthHandler = handler.NewHealthHandler(db, redisCache.Client())
	} else {
		healthHandler = handler.NewHealthHandler(db, nil)
	}

	// Routes
	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	if m != nil {
		api.Use(middleware.MetricsMiddleware(m))
	}
	assetHandler.RegisterRoutes(api, authMiddleware)
	maintenanceHandler.RegisterRoutes(api, authMiddleware)
	historyHandler.RegisterRoutes(api, authMiddleware)
	holderHandler.RegisterRoutes(api, authMiddleware)
	dashboardHandler.RegisterRoutes(api, authMiddleware)
	api.HandleFunc("/events/stream", authMiddleware.RequireAuth(streamer.HandleStream)).Methods(http.MethodGet)

	// Compose outer middleware: correlation id, rate limit, then CORS
	var httpHandler http.Handler = router
	httpHandler = rateLimitMiddleware.RateLimit(httpHandler)
	httpHandler = middleware.CorrelationIDMiddleware(httpHandler)
	if cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0 {
		httpHandler = middleware.CORSMiddleware(httpHandler, cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{})
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", map[string]interface{}{})

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, map[string]interface{}{})
	}
	structuredLogger.Info(ctx, "Server exited", map[string]interface{}{})
}
