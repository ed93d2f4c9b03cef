package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"basegraph.app/courier/internal/http/handler"
	"basegraph.app/courier/internal/http/middleware"
	"basegraph.app/courier/internal/service"
)

type RouterConfig struct {
	AdminAPIKey string
	// Limiter is shared by every caller-facing group. The owner shuts it down.
	Limiter *middleware.RateLimiter
	// Gatherer backs /metrics. Defaults to the global prometheus registry.
	Gatherer prometheus.Gatherer
	// Retention and Audits enable the admin retention routes when both are set.
	Retention handler.RetentionRunner
	Audits    handler.AuditReader
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{})
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/schemas/metadata", handler.MetadataSchemas)

		threads := v1.Group("/threads")
		threads.Use(middleware.RequireUser(), limiter.Handler())
		ThreadRouter(threads, handler.NewThreadHandler(services.Threads()))
		MessageRouter(threads, handler.NewMessageHandler(services.Messages()))
		SupportRouter(threads, handler.NewSupportHandler(services.Support()))

		inbox := v1.Group("/inbox")
		inbox.Use(middleware.RequireUser(), limiter.Handler())
		InboxRouter(inbox, handler.NewThreadHandler(services.Threads()))

		if cfg.Retention != nil && cfg.Audits != nil {
			admin := v1.Group("/admin/retention")
			admin.Use(middleware.RequireAdminAPIKey(cfg.AdminAPIKey))
			RetentionRouter(admin, handler.NewRetentionHandler(cfg.Retention, cfg.Audits))
		}
	}
}
