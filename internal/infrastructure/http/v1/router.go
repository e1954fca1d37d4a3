// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vendra/internal/domain/distribution"
	"vendra/internal/domain/metrics"
	"vendra/internal/domain/realtime"
	"vendra/internal/infrastructure/http/v1/handlers"
	"vendra/internal/infrastructure/http/v1/middleware"
	"vendra/internal/infrastructure/storage/postgres"
	"vendra/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool *postgres.Pool

	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	MetricStore    *metrics.Store
	MetricResolver *metrics.Resolver
	Ledger         *distribution.Ledger
	Hub            *realtime.Hub
	Audit          *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Hub)
	metricsHandler := handlers.NewMetricsHandler(base, cfg.MetricStore, cfg.MetricResolver, cfg.Audit)
	distributionHandler := handlers.NewDistributionHandler(base, cfg.Ledger)
	realtimeHandler := handlers.NewRealtimeHandler(cfg.Hub)

	// Health and telemetry endpoints (no auth)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Dashboard websocket
	ws := router.Group("/ws")
	ws.Use(middleware.Auth(cfg.JWTValidator))
	{
		ws.GET("/dashboard", realtimeHandler.Dashboard)
	}

	// API v1
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.Auth(cfg.JWTValidator))
	{
		sellers := apiV1.Group("/sellers/:sellerId")
		sellers.Use(middleware.RequireSellerAccess("sellerId"))
		{
			// Resolved metrics (sellers see their own, admins any)
			sellers.GET("/metrics", metricsHandler.Resolve)

			// Distribution lifecycle
			d := sellers.Group("/distributions")
			{
				d.GET("", distributionHandler.List)
				d.POST("", distributionHandler.Create)
				d.POST("/bulk", distributionHandler.BulkCreate)
				d.DELETE("/bulk", distributionHandler.BulkDelete)
				d.GET("/:id", distributionHandler.Get)
				d.DELETE("/:id", distributionHandler.Delete)
				d.POST("/:id/sales", distributionHandler.RecordSale)
				d.PATCH("/:id/allocation", distributionHandler.UpdateAllocation)
				d.PATCH("/:id/pricing", distributionHandler.UpdatePricing)
				d.PATCH("/:id/status", distributionHandler.UpdateStatus)
			}

			// Override administration (admin only)
			overrides := sellers.Group("/overrides")
			overrides.Use(middleware.RequireAdmin())
			{
				overrides.GET("", metricsHandler.ListOverrides)
				overrides.PUT("", metricsHandler.SetOverride)
				overrides.DELETE("", metricsHandler.ClearAllOverrides)
				overrides.GET("/audit", metricsHandler.OverrideAudit)
				overrides.DELETE("/:metric", metricsHandler.ClearOverride)
			}
		}

		// Cross-seller override maintenance (admin only)
		maintenance := apiV1.Group("/overrides")
		maintenance.Use(middleware.RequireAdmin())
		{
			maintenance.DELETE("/clear-all", metricsHandler.BulkClearOverrides)
		}
	}

	return router
}
