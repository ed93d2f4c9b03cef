package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/common/id"
	"basegraph.app/courier/common/logger"
	"basegraph.app/courier/common/otel"
	"basegraph.app/courier/core/config"
	"basegraph.app/courier/core/db"
	"basegraph.app/courier/internal/autoreply"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/events"
	"basegraph.app/courier/internal/http/middleware"
	httprouter "basegraph.app/courier/internal/http/router"
	"basegraph.app/courier/internal/notify"
	"basegraph.app/courier/internal/queue"
	"basegraph.app/courier/internal/retention"
	"basegraph.app/courier/internal/service"
	"basegraph.app/courier/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "courier starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "events_stream", cfg.Redis.EventsStream)

	asynqOpt, err := asynq.ParseRedisURI(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url for asynq", "error", err)
		os.Exit(1)
	}
	asynqClient := asynq.NewClient(asynqOpt)
	defer asynqClient.Close()

	policies, err := retention.LoadPolicies(cfg.Retention.PolicyFile)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load retention policies", "error", err)
		os.Exit(1)
	}

	producer := queue.NewRedisProducer(redisClient, queue.ProducerConfig{
		AutoReplyStream: cfg.AutoReply.Stream,
		EventsStream:    cfg.Redis.EventsStream,
		DedupeWindow:    cfg.AutoReply.DedupeWindow,
	}, slog.Default())
	defer producer.Close()

	bus := events.NewBus()
	detachBridge := events.NewRedisBridge(producer).Attach(bus)
	defer detachBridge()

	var autoReplies service.AutoReplyScheduler
	if cfg.AutoReply.Enabled {
		dispatcher := autoreply.NewDispatcher(producer, autoreply.Config{
			QueueSize:    cfg.AutoReply.QueueSize,
			Workers:      cfg.AutoReply.Workers,
			DedupeWindow: cfg.AutoReply.DedupeWindow,
		}, clock.Real())
		defer dispatcher.Close()
		autoReplies = dispatcher
		slog.InfoContext(ctx, "auto-reply enabled", "assistant_id", cfg.AutoReply.UserID, "stream", cfg.AutoReply.Stream)
	}

	stores := store.NewStores(database.Queries())
	txRunner := service.NewTxRunner(database)
	responseCache := newCache(cfg.Cache, redisClient)

	serviceMetrics := service.NewMetrics(prometheus.DefaultRegisterer)
	notifier := notify.NewAsynqNotifier(asynqClient, notify.AsynqConfig{
		Queue:    cfg.Notify.Queue,
		MaxRetry: cfg.Notify.MaxRetry,
	})

	services := service.NewServices(service.Deps{
		Stores:        stores,
		TxRunner:      txRunner,
		Cache:         responseCache,
		CacheTTL:      cfg.Cache.TTL,
		Fanout:        service.NewFanout(responseCache, bus, notifier, autoReplies, serviceMetrics),
		Policies:      policies,
		SupportRoster: cfg.Support.Roster,
		Metrics:       serviceMetrics,
	})

	retentionMetrics := retention.NewMetrics(prometheus.DefaultRegisterer)
	purger := retention.NewPurger(service.RetentionTxRunner(txRunner), policies, bus, clock.Real(), id.Default, retentionMetrics,
		retention.PurgerConfig{AuditRetention: days(cfg.Retention.AuditRetentionDays)}).WithCache(responseCache)
	scheduler, err := retention.NewScheduler(purger, retention.SchedulerConfig{
		Interval:   cfg.Retention.Interval,
		Cron:       cfg.Retention.Cron,
		BatchSize:  cfg.Retention.BatchSize,
		MaxThreads: cfg.Retention.MaxThreads,
		AuditGrace: days(cfg.Retention.AuditGraceDays),
	}, clock.Real(), retentionMetrics)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create retention scheduler", "error", err)
		os.Exit(1)
	}
	if cfg.Retention.Enabled {
		scheduler.Start(ctx)
	} else {
		slog.InfoContext(ctx, "retention scheduler disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RPS:   cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	})
	router := setupRouter(cfg, services, scheduler, stores, limiter)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	scheduler.Stop()
	limiter.Shutdown()

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, scheduler *retention.Scheduler, stores *store.Stores, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		AdminAPIKey: cfg.AdminAPIKey,
		Limiter:     limiter,
		Retention:   scheduler,
		Audits:      stores.RetentionAudits(),
	})

	return router
}

func newCache(cfg config.CacheConfig, client redis.UniversalClient) cache.Cache {
	if cfg.Backend == "memory" {
		return cache.NewMemoryCache()
	}
	return cache.NewRedisCache(client)
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

const banner = `
  ___ ___  _   _ ___ ___ ___ ___ 
 / __/ _ \| | | | _ \_ _| __| _ \
| (_| (_) | |_| |   /| || _||   /
 \___\___/ \___/|_|_\___|___|_|_\  server
`
