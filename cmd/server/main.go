package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chroniclehq/feedgen/internal/config"
	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/engine"
	"github.com/chroniclehq/feedgen/internal/handlers"
	"github.com/chroniclehq/feedgen/internal/lock"
	"github.com/chroniclehq/feedgen/internal/logger"
	"github.com/chroniclehq/feedgen/internal/middleware"
	"github.com/chroniclehq/feedgen/internal/queue"
	"github.com/chroniclehq/feedgen/internal/services/detectors"
	"github.com/chroniclehq/feedgen/internal/services/generator"
	"github.com/chroniclehq/feedgen/internal/signals"
	"github.com/chroniclehq/feedgen/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/gorilla/mux"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for generation API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "feedgen-api", cfg.OTELEndpoint, cfg.OTELSampleRatio)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
					zap.Float64("sample_ratio", cfg.OTELSampleRatio),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

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

	// Connect to Redis; the same client backs rate limiting and the cycle guard
	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Connect to RabbitMQ for job queueing (required)
	// Retry with exponential backoff to handle RabbitMQ startup delays
	const maxRetries = 10
	const initialDelay = 2 * time.Second
	var jobQueue *queue.RabbitMQQueue
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err = queue.NewRabbitMQQueue(cfg.RabbitMQURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			defer func() {
				if err := jobQueue.Close(); err != nil {
					zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
				}
			}()
			break
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
		)
	}

	// Initialize repositories
	activityRepo := database.NewActivityRepository(db)
	adminRepo := database.NewAdminConfigRepository(db)
	prefsRepo := database.NewPreferenceRepository(db)
	cooldownRepo := database.NewCooldownRepository(db)
	userRepo := database.NewUserRepository(db)

	// Activity snapshot builder
	aggregator := signals.NewAggregator(activityRepo, zapLogger)

	// Detector findings come from the detector service when configured;
	// without it the data predicates that need findings simply never pass.
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

	guard := lock.NewRedisGuard(redisLimiter.Client(), cfg.CycleLockTTL, zapLogger)

	resultPublisher, err := queue.NewRabbitMQResultPublisher(jobQueue)
	if err != nil {
		// Results are a best-effort surface; the API response carries them too
		zapLogger.Warn("failed_to_create_result_publisher", zap.Error(err))
		resultPublisher = nil
	}

	// Initialize handlers
	healthChecker := handlers.NewHealthCheckerWithDeps(db, redisLimiter, jobQueue)
	var results queue.ResultPublisher
	if resultPublisher != nil {
		results = resultPublisher
	}
	cycleHandler := handlers.NewCycleHandler(orchestrator, guard, jobQueue, cooldownRepo, results, zapLogger)
	openAPIHandler := handlers.NewOpenAPIHandler(handlers.DefaultOpenAPIPath)

	// Track API users so the scheduler knows who is active
	touchUsers := middleware.TouchFeedUser(userRepo, zapLogger)

	// Setup router. Middleware registered first wraps everything after it.
	r := mux.NewRouter()

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("feedgen-api"))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", handlers.VersionInfo).Methods("GET")
	openAPIHandler.RegisterRoutes(r)

	// API v1 routes, rate limited per client IP
	rateLimitMW, err := middleware.RateLimit(redisLimiter, cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)
	apiRouter.Use(touchUsers)
	cycleHandler.RegisterRoutes(apiRouter)

	// Catch-all OPTIONS handler for preflight requests the CORS middleware
	// passed through
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// Background loops stop with this context on shutdown
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// DLQ garbage collector
	dlqGC := queue.NewGarbageCollector(jobQueue, cfg.GCInterval, cfg.DLQRetention, zapLogger)
	go func() {
		if err := dlqGC.Start(bgCtx); err != nil && err != context.Canceled {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()
	zapLogger.Info("started_dlq_garbage_collector",
		zap.Duration("interval", cfg.GCInterval),
		zap.Duration("retention", cfg.DLQRetention),
	)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}
