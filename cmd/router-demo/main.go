// Command router-demo classifies three sample requests and prints where each was delegated.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/aescanero/dago-agent-patterns/internal/config"
	"github.com/aescanero/dago-agent-patterns/internal/llm/openai"
	"github.com/aescanero/dago-agent-patterns/internal/logging"
	"github.com/aescanero/dago-agent-patterns/internal/router"
)

var requests = []string{
	"Book me a flight to London",
	"What is the capital of France?",
	"What is the meaning of life?",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	llmClient, err := openai.FromConfig(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize llm client", zap.Error(err))
	}
	logger.Info("language model initialized", zap.String("model", llmClient.Model()))

	routerConfig := router.Config{Mode: router.RoutingMode(cfg.RouterMode)}
	if routerConfig.Mode == router.ModeHybrid && cfg.CELEnabled {
		routerConfig.FastRules = router.DefaultFastRules()
	}
	r, err := router.NewRouter(llmClient, routerConfig, logger)
	if err != nil {
		logger.Fatal("failed to initialize router", zap.Error(err))
	}

	ctx := context.Background()
	for _, request := range requests {
		fmt.Printf("\n--- Request: %s ---\n", request)

		result, err := r.Route(ctx, request)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}

		fmt.Printf("Decision: %s (%s)\n", result.Decision, result.PathTaken)
		fmt.Printf("Output: %s\n", result.Output)
	}
}
