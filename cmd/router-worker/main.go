package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/config"
	"github.com/aescanero/dago-agent-patterns/internal/llm/openai"
	"github.com/aescanero/dago-agent-patterns/internal/logging"
	"github.com/aescanero/dago-agent-patterns/internal/router"
	"github.com/aescanero/dago-agent-patterns/internal/worker"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting router worker",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Initialize LLM client
	llmClient, err := openai.FromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize llm client", zap.Error(err))
	}
	logger.Info("llm client initialized",
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", llmClient.Model()),
	)

	// Initialize router
	routerConfig := router.Config{Mode: router.RoutingMode(cfg.RouterMode)}
	if routerConfig.Mode == router.ModeHybrid && cfg.CELEnabled {
		routerConfig.FastRules = router.DefaultFastRules()
	}
	routerInstance, err := router.NewRouter(llmClient, routerConfig, logger)
	if err != nil {
		logger.Fatal("failed to initialize router", zap.Error(err))
	}
	logger.Info("router initialized",
		zap.String("mode", cfg.RouterMode),
		zap.Int("fast_rules", len(routerConfig.FastRules)),
	)

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize worker
	w := worker.NewWorker(cfg, redisClient, routerInstance, worker.NewMetrics(registry), logger)

	// Start worker
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start health server
	healthServer := worker.NewHealthServer(cfg.HealthPort, registry, logger,
		worker.RedisCheck(redisClient),
		worker.WorkerCheck(w),
	)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("router worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	// Stop health server
	if err := healthServer.Stop(); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	// Stop worker, waiting for the in-flight request
	if err := w.Stop(cfg.LLMTimeout + 5*time.Second); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	logger.Info("worker stopped")
}
