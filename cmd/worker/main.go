package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chroniclehq/feedgen/internal/config"
	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/engine"
	"github.com/chroniclehq/feedgen/internal/lock"
	"github.com/chroniclehq/feedgen/internal/logger"
	"github.com/chroniclehq/feedgen/internal/queue"
	"github.com/chroniclehq/feedgen/internal/services/detectors"
	"github.com/chroniclehq/feedgen/internal/services/generator"
	"github.com/chroniclehq/feedgen/internal/signals"
	"github.com/chroniclehq/feedgen/internal/workers"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for generation API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_model", cfg.AIModel),
	)

	// Connect to database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Connect to Redis for the cross-instance cycle guard
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	pingCancel()
	zapLogger.Info("connected_to_redis")

	// Connect to RabbitMQ
	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	// Initialize repositories
	activityRepo := database.NewActivityRepository(db)
	adminRepo := database.NewAdminConfigRepository(db)
	prefsRepo := database.NewPreferenceRepository(db)
	cooldownRepo := database.NewCooldownRepository(db)
	userRepo := database.NewUserRepository(db)

	aggregator := signals.NewAggregator(activityRepo, zapLogger)

	var collector engine.FindingsCollector = detectors.NoopCollector{}
	if cfg.DetectorBaseURL != "" {
		collector = detectors.NewClient(cfg.DetectorBaseURL, cfg.DetectorTimeout, zapLogger)
		zapLogger.Info("detector_client_configured", zap.String("base_url", cfg.DetectorBaseURL))
	} else {
		zapLogger.Warn("detector_service_not_configured_findings_disabled")
	}

	if cfg.OpenAIKey == "" {
		zapLogger.Fatal("openai_api_key_not_configured")
	}
	contentGenerator := generator.NewOpenAIGeneratorWithLogger(
		cfg.OpenAIKey,
		cfg.AIBaseURL,
		cfg.AIModel,
		zapLogger,
		debugMode,
	)
	zapLogger.Info("initialized_content_generator", zap.String("model", cfg.AIModel))

	orchestrator := engine.NewOrchestrator(
		aggregator,
		collector,
		adminRepo,
		prefsRepo,
		cooldownRepo,
		contentGenerator,
		zapLogger,
		cfg.GeneratorTimeout,
	)

	guard := lock.NewRedisGuard(redisClient, cfg.CycleLockTTL, zapLogger)

	var results queue.ResultPublisher
	if publisher, err := queue.NewRabbitMQResultPublisher(jobQueue); err != nil {
		zapLogger.Warn("failed_to_create_result_publisher", zap.Error(err))
	} else {
		results = publisher
	}

	runner := workers.NewCycleRunner(orchestrator, guard, jobQueue, results, zapLogger)
	scheduler := workers.NewCycleScheduler(jobQueue, userRepo, cooldownRepo, zapLogger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start consuming messages
	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	// Daily cycle fan-out and stale cooldown pruning
	go scheduler.Run(ctx)

	zapLogger.Info("worker_started")

	// Process messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}

				if err := runner.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("failed_to_process_job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	// Surface queue-level errors
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	zapLogger.Info("shutdown_signal_received")

	cancel()

	zapLogger.Info("worker_stopped")
}
