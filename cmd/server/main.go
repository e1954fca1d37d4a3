// Package main is the entry point for the Vendra API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendra/internal/domain/auth"
	"vendra/internal/domain/distribution"
	"vendra/internal/domain/metrics"
	"vendra/internal/domain/realtime"
	v1 "vendra/internal/infrastructure/http/v1"
	"vendra/internal/infrastructure/migrate"
	"vendra/internal/infrastructure/prom"
	"vendra/internal/infrastructure/storage/postgres"
	"vendra/internal/infrastructure/storage/postgres/distribution_repo"
	"vendra/internal/infrastructure/storage/postgres/metric_repo"
	"vendra/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting vendra server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")

	if getEnv("MIGRATE_ON_START", "true") == "true" {
		path := getEnv("MIGRATIONS_PATH", "migrations")
		if err := migrate.Run(ctx, dsn, path); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
	}

	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 25); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- JWT ---
	jwtSecret := getEnv("JWT_SECRET", "your-secret-key-change-in-production")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Instrumentation ---
	collectors := prom.New()

	// --- Override audit trail ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Repositories ---
	overrideRepo := metric_repo.NewOverrideRepo(txManager)
	statsRepo := metric_repo.NewStatsRepo(txManager)
	distributionRepo := distribution_repo.NewDistributionRepo(txManager)
	productRepo := distribution_repo.NewProductRepo(txManager)

	// --- Domain services ---
	// The hub doubles as the change notifier for both domains; wiring is
	// two-phase because the hub's snapshot feed reads from the services.
	resolver := metrics.NewResolver(overrideRepo, statsRepo)
	hub := realtime.NewHub(nil, collectors)
	store := metrics.NewStore(overrideRepo, txManager, hub, auditService, collectors)
	ledger := distribution.NewLedger(distributionRepo, productRepo, hub, collectors)
	hub.SetSnapshotter(realtime.NewFeed(resolver, ledger))

	// --- Periodic dashboard refresh ---
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	tick := getEnvDuration("DASHBOARD_TICK_INTERVAL", 5*time.Second)
	go hub.Run(hubCtx, tick)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		JWTValidator:   jwtService,
		MetricStore:    store,
		MetricResolver: resolver,
		Ledger:         ledger,
		Hub:            hub,
		Audit:          auditService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopHub()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
