package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"basegraph.app/courier/common/id"
	"basegraph.app/courier/common/llm"
	"basegraph.app/courier/common/logger"
	"basegraph.app/courier/common/otel"
	"basegraph.app/courier/core/config"
	"basegraph.app/courier/core/db"
	"basegraph.app/courier/internal/autoreply"
	"basegraph.app/courier/internal/cache"
	"basegraph.app/courier/internal/events"
	"basegraph.app/courier/internal/notify"
	"basegraph.app/courier/internal/queue"
	"basegraph.app/courier/internal/retention"
	"basegraph.app/courier/internal/service"
	"basegraph.app/courier/internal/store"
	"basegraph.app/courier/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if !cfg.AutoReply.Enabled {
		slog.InfoContext(ctx, "auto-reply disabled, nothing to do")
		return
	}

	slog.InfoContext(ctx, "courier worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.AutoReply.Group,
		"consumer_name", cfg.AutoReply.Consumer,
		"assistant_id", cfg.AutoReply.UserID)

	// Use a different node ID than the server
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
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
	slog.InfoContext(ctx, "redis connected", "stream", cfg.AutoReply.Stream)

	asynqOpt, err := asynq.ParseRedisURI(cfg.Redis.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url for asynq", "error", err)
		os.Exit(1)
	}
	asynqClient := asynq.NewClient(asynqOpt)
	defer asynqClient.Close()

	consumer, err := queue.NewRedisConsumer(ctx, redisClient, queue.ConsumerConfig{
		Stream:       cfg.AutoReply.Stream,
		Group:        cfg.AutoReply.Group,
		Consumer:     cfg.AutoReply.Consumer,
		DLQStream:    cfg.AutoReply.DLQStream,
		BatchSize:    10,
		Block:        5 * time.Second,
		MaxAttempts:  cfg.AutoReply.MaxAttempts,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	// Replies flow through the regular append path so they reach caches, the realtime
	// stream and notifications like any other message. They never schedule another reply.
	producer := queue.NewRedisProducer(redisClient, queue.ProducerConfig{
		AutoReplyStream: cfg.AutoReply.Stream,
		EventsStream:    cfg.Redis.EventsStream,
	}, slog.Default())
	defer producer.Close()

	bus := events.NewBus()
	detachBridge := events.NewRedisBridge(producer).Attach(bus)
	defer detachBridge()

	policies, err := retention.LoadPolicies(cfg.Retention.PolicyFile)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load retention policies", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Queries())
	responseCache := cache.NewRedisCache(redisClient)
	serviceMetrics := service.NewMetrics(prometheus.DefaultRegisterer)
	notifier := notify.NewAsynqNotifier(asynqClient, notify.AsynqConfig{
		Queue:    cfg.Notify.Queue,
		MaxRetry: cfg.Notify.MaxRetry,
	})

	services := service.NewServices(service.Deps{
		Stores:        stores,
		TxRunner:      service.NewTxRunner(database),
		Cache:         responseCache,
		CacheTTL:      cfg.Cache.TTL,
		Fanout:        service.NewFanout(responseCache, bus, notifier, nil, serviceMetrics),
		Policies:      policies,
		SupportRoster: cfg.Support.Roster,
		Metrics:       serviceMetrics,
	})

	responder, err := newResponder(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create responder", "error", err)
		os.Exit(1)
	}

	processor := worker.NewAutoReplyProcessor(stores, responder, services.Messages(), cfg.AutoReply.UserID)

	w := worker.New(consumer, processor, worker.Config{
		MaxAttempts: cfg.AutoReply.MaxAttempts,
	})

	reclaimer := worker.NewRedisReclaimer(redisClient, worker.RedisReclaimerConfig{
		Stream:        cfg.AutoReply.Stream,
		Group:         cfg.AutoReply.Group,
		Consumer:      cfg.AutoReply.Consumer + "-reclaimer",
		MinIdle:       5 * time.Minute,
		Interval:      time.Minute,
		BatchSize:     10,
		MaxDeliveries: int64(cfg.AutoReply.MaxAttempts) + 2,
	}, consumer, w.ProcessMessage)

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	errCh := make(chan error, 2)
	go func() {
		errCh <- w.Run(runCtx)
	}()
	go func() {
		reclaimer.Run(runCtx)
		errCh <- nil
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop reclaimer first (quick)
	reclaimer.Stop()

	// Stop worker (may be processing)
	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

func newResponder(cfg config.Config) (autoreply.Responder, error) {
	if !cfg.OpenAI.Enabled() {
		slog.Info("no model configured, using static replies", "enabled", cfg.AutoReply.StaticReply != "")
		return autoreply.StaticResponder{Text: cfg.AutoReply.StaticReply}, nil
	}

	client, err := llm.New(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}
	return autoreply.NewLLMResponder(client), nil
}

const banner = `
  ___ ___  _   _ ___ ___ ___ ___ 
 / __/ _ \| | | | _ \_ _| __| _ \
| (_| (_) | |_| |   /| || _||   /
 \___\___/ \___/|_|_\___|___|_|_\  worker
`
